package db

import (
	"context"
	"regexp"
	"strings"
)

// Executor runs one statement against a current database. Engine satisfies
// it directly; remote clients adapt with ExecutorFunc.
type Executor interface {
	ExecuteContext(ctx context.Context, query string, database string) QueryResult
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, query string, database string) QueryResult

func (f ExecutorFunc) ExecuteContext(ctx context.Context, query string, database string) QueryResult {
	return f(ctx, query, database)
}

var useTargetPattern = regexp.MustCompile("(?i)^\\s*use\\s+`?(\\w+)`?")

// UseTarget returns the database a USE statement names.
func UseTarget(statement string) (string, bool) {
	match := useTargetPattern.FindStringSubmatch(statement)
	if match == nil {
		return "", false
	}
	return strings.ToLower(match[1]), true
}

// Session feeds statements to an Executor one at a time and tracks the
// current database across USE statements.
type Session struct {
	executor Executor

	Database string

	// StopOnError ends a script at its first failed statement. Scripts run
	// to completion by default.
	StopOnError bool
}

func NewSession(executor Executor, database string) *Session {
	return &Session{executor: executor, Database: database}
}

// Execute runs a single statement. A USE statement moves the session to its
// target before running, whether or not the target exists.
func (session *Session) Execute(ctx context.Context, statement string) QueryResult {
	if target, ok := UseTarget(statement); ok {
		session.Database = target
	}
	return session.executor.ExecuteContext(ctx, statement, session.Database)
}

// ExecuteScript splits script into statements and runs them in order,
// returning one result per statement run.
func (session *Session) ExecuteScript(ctx context.Context, script string) []QueryResult {
	statements := SplitStatements(script)
	results := make([]QueryResult, 0, len(statements))
	for _, statement := range statements {
		if err := ctx.Err(); err != nil {
			results = append(results, ErrorResult(err.Error()))
			break
		}
		result := session.Execute(ctx, statement)
		results = append(results, result)
		if !result.Success && session.StopOnError {
			break
		}
	}
	return results
}

// SplitStatements splits content on semicolons outside quoted strings and
// drops "--" line comments and empty statements.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if (ch == '\'' || ch == '"') && (i == 0 || content[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		if !inString && ch == ';' {
			if statement := strings.TrimSpace(current.String()); statement != "" {
				statements = append(statements, statement)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if statement := strings.TrimSpace(current.String()); statement != "" {
		statements = append(statements, statement)
	}
	return statements
}

// Truncate flattens whitespace in s and shortens it to max runes with an
// ellipsis.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
