// Package router maps flat tool and resource names to category handlers using
// an ordered table of exact-match and prefix rules.
//
// The first matching rule wins. Because of that, a rule that would shadow a
// later, more specific rule is rejected by [Table.Validate]: specific names
// such as "api_indexer_lookup_account_transactions" must appear before the
// generic "api_indexer_lookup_account_" family they would otherwise fall into.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/tool"
)

type matchKind uint8

const (
	exact matchKind = iota + 1
	prefix
)

// Predicate matches a name either exactly or by prefix.
type Predicate struct {
	kind    matchKind
	literal string
}

// Exact matches only name.
func Exact(name string) Predicate { return Predicate{kind: exact, literal: name} }

// Prefix matches every name starting with p.
func Prefix(p string) Predicate { return Predicate{kind: prefix, literal: p} }

// Match reports whether name satisfies the predicate.
func (p Predicate) Match(name string) bool {
	switch p.kind {
	case exact:
		return name == p.literal
	case prefix:
		return strings.HasPrefix(name, p.literal)
	default:
		return false
	}
}

// shadows reports whether every name q can match is also matched by p.
func (p Predicate) shadows(q Predicate) bool {
	switch p.kind {
	case exact:
		return q.kind == exact && q.literal == p.literal
	case prefix:
		return strings.HasPrefix(q.literal, p.literal)
	default:
		return false
	}
}

func (p Predicate) String() string {
	switch p.kind {
	case exact:
		return fmt.Sprintf("exact(%q)", p.literal)
	case prefix:
		return fmt.Sprintf("prefix(%q)", p.literal)
	default:
		return "invalid"
	}
}

// Rule assigns the names matched by Match to Category.
type Rule struct {
	Match    Predicate
	Category string
}

// Table is an ordered list of rules.
type Table []Rule

// Resolve returns the category of the first rule matching name.
func (t Table) Resolve(name string) (string, bool) {
	for _, r := range t {
		if r.Match.Match(name) {
			return r.Category, true
		}
	}
	return "", false
}

// Matches returns the indices of every rule matching name, in table order.
func (t Table) Matches(name string) []int {
	var idx []int
	for i, r := range t {
		if r.Match.Match(name) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Categories returns the distinct categories named by the table, sorted.
func (t Table) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks the table's ordering and that every name in names is
// claimed by some rule.
//
// Ordering: a rule may not shadow any later rule, since the later rule could
// never win. Overlapping rules are therefore always ordered specific-first,
// and every name that matches several rules is owned by the narrowest one.
func (t Table) Validate(names []string) error {
	var errs []error
	for i, r := range t {
		if r.Match.kind == 0 || r.Match.literal == "" {
			errs = append(errs, fmt.Errorf("rule %d: empty predicate", i))
			continue
		}
		if r.Category == "" {
			errs = append(errs, fmt.Errorf("rule %d (%s): empty category", i, r.Match))
		}
		for j := i + 1; j < len(t); j++ {
			if r.Match.shadows(t[j].Match) {
				errs = append(errs, fmt.Errorf("rule %d (%s) shadows rule %d (%s)", i, r.Match, j, t[j].Match))
			}
		}
	}
	for _, name := range names {
		if _, ok := t.Resolve(name); !ok {
			errs = append(errs, fmt.Errorf("name %q matches no rule", name))
		}
	}
	return errors.Join(errs...)
}

// Observer is notified after every dispatch.
type Observer func(category string, elapsed time.Duration, err error)

// Option configures a Router.
type Option func(*Router)

// WithObserver registers fn to be called after each dispatched call.
func WithObserver(fn Observer) Option {
	return func(r *Router) {
		r.observer = fn
	}
}

// Router dispatches a call to the handler owning the name's category. A
// Router is itself a tool.Handler, so routers nest.
type Router struct {
	name     string
	table    Table
	handlers map[string]tool.Handler
	observer Observer
}

// New builds a Router. Every category named by table must have a handler and
// every handler must be reachable from some rule.
func New(name string, table Table, handlers map[string]tool.Handler, opts ...Option) (*Router, error) {
	if err := table.Validate(nil); err != nil {
		return nil, fmt.Errorf("new router %s: %w", name, err)
	}
	for _, category := range table.Categories() {
		if handlers[category] == nil {
			return nil, fmt.Errorf("new router %s: no handler for category %q", name, category)
		}
	}
	for category := range handlers {
		if !containsRule(table, category) {
			return nil, fmt.Errorf("new router %s: handler %q is unreachable", name, category)
		}
	}

	r := &Router{
		name:     name,
		table:    table,
		handlers: handlers,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

func containsRule(t Table, category string) bool {
	for _, r := range t {
		if r.Category == category {
			return true
		}
	}
	return false
}

// Table returns the router's rule table.
func (r *Router) Table() Table { return r.table }

// Resolve returns the category owning name, or an UnknownTool error.
func (r *Router) Resolve(name string) (string, error) {
	category, ok := r.table.Resolve(name)
	if !ok {
		return "", tool.NewUnknownTool(name)
	}
	return category, nil
}

// Handle implements tool.Handler. Errors from the category handler are
// returned unchanged.
func (r *Router) Handle(ctx context.Context, name string, args tool.Args) (jsonvalue.Value, error) {
	category, err := r.Resolve(name)
	if err != nil {
		logging.Logger().Debug("no route", "router", r.name, "tool", name)
		return jsonvalue.Value{}, err
	}

	logging.Logger().Debug("dispatch", "router", r.name, "tool", name, "category", category)
	start := time.Now()
	v, err := r.handlers[category].Handle(ctx, name, args)
	if r.observer != nil {
		r.observer(category, time.Since(start), err)
	}
	return v, err
}
