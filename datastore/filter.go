package datastore

import (
	"fmt"
	"strings"

	"github.com/coreybb/fabula/models"
)

// FilterField names a story column that can be filtered on.
type FilterField string

const (
	FilterCategory FilterField = "category"
	FilterStatus   FilterField = "status"
	FilterTitle    FilterField = "title"
	FilterAuthor   FilterField = "author"
)

type matchKind int

const (
	matchExact matchKind = iota
	matchContainsFold
)

type predicate struct {
	field FilterField
	match matchKind
	value string
}

// StoryFilter is a conjunction of predicates over stories. The zero value matches
// every story. Builder methods ignore blank values, so optional query parameters can be
// passed straight through.
type StoryFilter struct {
	predicates []predicate
}

func (f StoryFilter) with(field FilterField, match matchKind, value string) StoryFilter {
	value = strings.TrimSpace(value)
	if value == "" {
		return f
	}
	preds := make([]predicate, len(f.predicates), len(f.predicates)+1)
	copy(preds, f.predicates)
	return StoryFilter{predicates: append(preds, predicate{field: field, match: match, value: value})}
}

// Category matches the category exactly.
func (f StoryFilter) Category(v string) StoryFilter { return f.with(FilterCategory, matchExact, v) }

// Status matches the status exactly.
func (f StoryFilter) Status(v string) StoryFilter { return f.with(FilterStatus, matchExact, v) }

// TitleContains matches titles containing v, ignoring case.
func (f StoryFilter) TitleContains(v string) StoryFilter {
	return f.with(FilterTitle, matchContainsFold, v)
}

// AuthorContains matches authors containing v, ignoring case.
func (f StoryFilter) AuthorContains(v string) StoryFilter {
	return f.with(FilterAuthor, matchContainsFold, v)
}

// Fields lists the active predicates' fields in the order they were added.
func (f StoryFilter) Fields() []FilterField {
	fields := make([]FilterField, 0, len(f.predicates))
	for _, p := range f.predicates {
		fields = append(fields, p.field)
	}
	return fields
}

func (f StoryFilter) IsEmpty() bool {
	return len(f.predicates) == 0
}

// Matches evaluates the filter against s in Go.
func (f StoryFilter) Matches(s *models.Story) bool {
	for _, p := range f.predicates {
		got := storyField(s, p.field)
		switch p.match {
		case matchExact:
			if got != p.value {
				return false
			}
		case matchContainsFold:
			if !strings.Contains(strings.ToLower(got), strings.ToLower(p.value)) {
				return false
			}
		}
	}
	return true
}

func storyField(s *models.Story, field FilterField) string {
	switch field {
	case FilterCategory:
		return s.Category
	case FilterStatus:
		return string(s.Status)
	case FilterTitle:
		return s.Title
	case FilterAuthor:
		return s.Author
	default:
		return ""
	}
}

// whereClause renders the filter for d as a WHERE clause with $N placeholders and the
// matching arguments. An empty filter renders as "".
func (f StoryFilter) whereClause(d dialect) (string, []any) {
	if f.IsEmpty() {
		return "", nil
	}

	conds := make([]string, 0, len(f.predicates))
	args := make([]any, 0, len(f.predicates))
	for i, p := range f.predicates {
		column := string(p.field) // Column names match the field names
		placeholder := fmt.Sprintf("$%d", i+1)
		switch p.match {
		case matchExact:
			conds = append(conds, column+" = "+placeholder)
			args = append(args, p.value)
		case matchContainsFold:
			conds = append(conds, d.containsFold(column, placeholder))
			args = append(args, d.foldPattern(p.value))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
