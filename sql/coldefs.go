package sql

import (
	"regexp"
	"strings"

	"github.com/nickyhof/DemoDB/core"
)

var (
	primaryKeyClause = regexp.MustCompile("(?i)primary\\s+key\\s*\\(\\s*`?(\\w+)`?\\s*\\)")
	uniqueClause     = regexp.MustCompile("(?i)^unique(?:\\s+(?:key|index))?(?:\\s+`?\\w+`?)?\\s*\\(\\s*`?(\\w+)`?")
	indexClause      = regexp.MustCompile("(?i)^(?:key|index)(?:\\s+`?\\w+`?)?\\s*\\(\\s*`?(\\w+)`?")
	foreignKeyClause = regexp.MustCompile("(?i)^foreign\\s+key(?:\\s+`?\\w+`?)?\\s*\\(\\s*`?(\\w+)`?\\s*\\)\\s*references\\s+`?(\\w+)`?\\s*\\(\\s*`?(\\w+)`?")
	constraintPrefix = regexp.MustCompile("(?i)^constraint(?:\\s+`?\\w+`?)?\\s+")
	referencesClause = regexp.MustCompile("(?i)references\\s+`?(\\w+)`?\\s*\\(\\s*`?(\\w+)`?")
	quotedDefault    = regexp.MustCompile("(?i)\\bdefault\\s+'([^']*)'")
	bareDefault      = regexp.MustCompile("(?i)\\bdefault\\s+([^\\s,']+)")
	notNull          = regexp.MustCompile("(?i)\\bnot\\s+null\\b")
	autoIncrement    = regexp.MustCompile("(?i)\\bauto_increment\\b")
	inlinePrimaryKey = regexp.MustCompile("(?i)\\bprimary\\s+key\\b")
	inlineUnique     = regexp.MustCompile("(?i)\\bunique\\b")
)

// ParseColumnDefinitions derives a schema from the body of a CREATE TABLE.
// Definitions that cannot be read as a column are skipped one by one. Table
// level PRIMARY KEY, UNIQUE, KEY and FOREIGN KEY clauses annotate the columns
// they name. At most one column ends up as primary key and only that column
// keeps AUTO_INCREMENT.
func ParseColumnDefinitions(body string) []core.Column {
	primaryKey := ""
	if match := primaryKeyClause.FindStringSubmatch(body); match != nil {
		primaryKey = match[1]
	}

	var columns []core.Column
	var constraints []string
	for _, definition := range SplitTopLevel(body, ',') {
		definition = strings.TrimSpace(definition)
		if definition == "" {
			continue
		}
		definition = constraintPrefix.ReplaceAllString(definition, "")
		if isTableConstraint(definition) {
			constraints = append(constraints, definition)
			continue
		}
		if column, ok := parseColumn(definition, primaryKey); ok {
			columns = append(columns, column)
		}
	}

	columns = normalizeKeys(columns)
	for _, constraint := range constraints {
		applyConstraint(columns, constraint)
	}
	return columns
}

func isTableConstraint(definition string) bool {
	lower := strings.ToLower(definition)
	for _, prefix := range []string{"primary key", "unique", "key ", "key(", "index ", "index(", "foreign key", "check "} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func parseColumn(definition, primaryKey string) (core.Column, bool) {
	name, rest := cutField(definition)
	typ, _ := cutField(rest)
	name = strings.Trim(name, "`")
	if name == "" || typ == "" {
		return core.Column{}, false
	}

	column := core.Column{
		Name:     name,
		Type:     typ,
		Nullable: !notNull.MatchString(definition),
	}
	if autoIncrement.MatchString(definition) {
		column.Extra = core.AutoIncrement
	}
	switch {
	case name == primaryKey || inlinePrimaryKey.MatchString(definition):
		column.Key = core.PrimaryKey
	case inlineUnique.MatchString(definition):
		column.Key = core.UniqueKey
	}
	if match := quotedDefault.FindStringSubmatch(definition); match != nil {
		def := match[1]
		column.Default = &def
	} else if match := bareDefault.FindStringSubmatch(definition); match != nil && !strings.EqualFold(match[1], "null") {
		def := match[1]
		column.Default = &def
	}
	if match := referencesClause.FindStringSubmatch(definition); match != nil {
		column.References = &core.Reference{Table: strings.ToLower(match[1]), Column: match[2]}
		if column.Key == core.NoKey {
			column.Key = core.MultipleKey
		}
	}
	if column.Key == core.PrimaryKey {
		column.Nullable = false
	}
	return column, true
}

// cutField returns the first whitespace-separated field of s, keeping
// parenthesised groups such as decimal(10, 2) whole, and the remainder.
func cutField(s string) (field, rest string) {
	s = strings.TrimSpace(s)
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isSpace(c):
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func applyConstraint(columns []core.Column, constraint string) {
	find := func(name string) *core.Column {
		for i := range columns {
			if columns[i].Name == name {
				return &columns[i]
			}
		}
		return nil
	}

	if match := foreignKeyClause.FindStringSubmatch(constraint); match != nil {
		if column := find(match[1]); column != nil {
			column.References = &core.Reference{Table: strings.ToLower(match[2]), Column: match[3]}
			if column.Key == core.NoKey {
				column.Key = core.MultipleKey
			}
		}
		return
	}
	if match := uniqueClause.FindStringSubmatch(constraint); match != nil {
		if column := find(match[1]); column != nil && column.Key != core.PrimaryKey {
			column.Key = core.UniqueKey
		}
		return
	}
	if match := indexClause.FindStringSubmatch(constraint); match != nil {
		if column := find(match[1]); column != nil && column.Key == core.NoKey {
			column.Key = core.MultipleKey
		}
	}
}

func normalizeKeys(columns []core.Column) []core.Column {
	seenPrimary := false
	for i := range columns {
		if columns[i].Key == core.PrimaryKey {
			if seenPrimary {
				columns[i].Key = core.NoKey
			}
			seenPrimary = true
		}
		if columns[i].Key != core.PrimaryKey && columns[i].IsAutoIncrement() {
			columns[i].Extra = ""
		}
	}
	return columns
}

// SplitTopLevel splits s on sep where sep is outside parentheses and quotes.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
