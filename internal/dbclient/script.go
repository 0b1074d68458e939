package dbclient

import (
	"context"
	"strings"

	"dbpilot/internal/domain"
)

// ExecOptions controls multi-statement script execution.
type ExecOptions struct {
	// StopOnError halts the script after the first failed statement; the
	// returned list ends with that statement's ErrorResult.
	StopOnError bool `json:"stopOnError"`
}

// SplitScript splits a script into statements on semicolons that are
// outside quoted strings and comments. Single and double quotes use
// doubled-quote escapes; -- line comments and /* */ block comments are
// carried through but never split on. Statements containing only
// whitespace or comments are dropped.
func SplitScript(script string) []string {
	var stmts []string
	var b strings.Builder
	hasContent := false

	flush := func() {
		if hasContent {
			if s := strings.TrimSpace(b.String()); s != "" {
				stmts = append(stmts, s)
			}
		}
		b.Reset()
		hasContent = false
	}

	i, n := 0, len(script)
	for i < n {
		c := script[i]
		switch {
		case c == '\'' || c == '"':
			quote := c
			hasContent = true
			b.WriteByte(c)
			i++
			for i < n {
				b.WriteByte(script[i])
				if script[i] == quote {
					// Doubled quote is an escaped literal, not a close.
					if i+1 < n && script[i+1] == quote {
						i++
						b.WriteByte(script[i])
						i++
						continue
					}
					i++
					break
				}
				i++
			}

		case c == '-' && i+1 < n && script[i+1] == '-':
			for i < n && script[i] != '\n' {
				b.WriteByte(script[i])
				i++
			}

		case c == '/' && i+1 < n && script[i+1] == '*':
			b.WriteString("/*")
			i += 2
			for i < n {
				if script[i] == '*' && i+1 < n && script[i+1] == '/' {
					b.WriteString("*/")
					i += 2
					break
				}
				b.WriteByte(script[i])
				i++
			}

		case c == ';':
			flush()
			i++

		default:
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				hasContent = true
			}
			b.WriteByte(c)
			i++
		}
	}
	flush()

	return stmts
}

// RunScript executes each statement of a script serially on one handle,
// in submission order, holding the handle for the whole script. One
// SqlResult per attempted statement.
func RunScript(ctx context.Context, conn *Conn, script string, opts ExecOptions) []domain.SqlResult {
	stmts := SplitScript(script)
	results := make([]domain.SqlResult, 0, len(stmts))

	conn.mu.Lock()
	defer conn.mu.Unlock()

	for _, stmt := range stmts {
		res := conn.runLocked(ctx, stmt, nil)
		results = append(results, res)
		if _, failed := res.(*domain.ErrorResult); failed && opts.StopOnError {
			break
		}
	}
	return results
}
