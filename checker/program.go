package checker

import (
	"regexp"

	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/env"
	"github.com/takoeight0821/rustscript/types"
)

// Program checks a whole parsed program in a fresh global scope and returns
// that scope.
func (c *Checker) Program(prog *ast.Program) *env.Scope {
	c.signatures = prog.Signatures
	c.next = 0
	c.byName = make(map[string]ast.Signature, len(prog.Signatures))
	for _, sig := range prog.Signatures {
		c.byName[sig.Name] = sig
	}

	global := env.NewGlobal()
	for _, stmt := range Statements(prog.Nodes) {
		c.statement(stmt, global)
	}

	return global
}

// Statements slices a run of IR into top-level statements. A statement ends
// at a ';' or at a '}' that closes back to the starting depth. A Main node
// after a closing brace belongs to the function before it, and an Else
// continues an if statement that has not received its else branch yet.
func Statements(nodes []ast.Node) [][]ast.Node {
	var stmts [][]ast.Node
	for len(nodes) > 0 {
		n := statementEnd(nodes)
		stmts = append(stmts, nodes[:n])
		nodes = nodes[n:]
	}
	return stmts
}

func statementEnd(nodes []ast.Node) int {
	braces, parens, ifs := 0, 0, 0

	for i := 0; i < len(nodes); i++ {
		//exhaustive:ignore
		switch nodes[i].Kind {
		case ast.If:
			if braces == 0 && parens == 0 {
				ifs++
			}
			continue
		case ast.LeftParen:
			parens++
			continue
		case ast.RightParen:
			parens--
			continue
		case ast.LeftBrace:
			braces++
			continue
		case ast.RightBrace:
			braces--
			if braces > 0 || parens > 0 {
				continue
			}
		case ast.SemiColon:
			if braces > 0 || parens > 0 {
				continue
			}
		default:
			continue
		}

		end := i + 1
		if end < len(nodes) && nodes[end].Kind == ast.Main {
			end++
		}
		if end < len(nodes) && nodes[end].Kind == ast.Else && ifs > 0 {
			ifs--
			i = end
			continue
		}

		return end
	}

	return len(nodes)
}

func (c *Checker) statement(stmt []ast.Node, scope *env.Scope) types.Type {
	if len(stmt) == 0 {
		return types.Unknown
	}

	//exhaustive:ignore
	switch stmt[0].Kind {
	case ast.Let:
		if len(stmt) >= 4 && stmt[1].Kind == ast.Identifier && stmt[2].Kind == ast.Assign {
			value := c.lower(stmt[3], scope)
			marker := ast.Marker(types.OfLiteral(value.Kind).Marker(), stmt[1].Lexeme, stmt[1].Line)
			return c.Check([]ast.Node{stmt[0], marker, value}, scope)
		}
	case ast.Identifier:
		if len(stmt) > 1 && stmt[1].Kind == ast.Assign {
			return c.assignment(stmt, scope)
		}
		if len(stmt) > 1 && stmt[1].Kind == ast.LeftParen {
			c.call(stmt, scope)
			return types.Unknown
		}
	case ast.Fn:
		c.function(stmt, scope)
		return types.Unknown
	case ast.Class:
		c.class(stmt, scope)
		return types.Unknown
	case ast.Print:
		c.print(stmt, scope)
		return types.Unknown
	case ast.If:
		c.ifStmt(stmt, scope)
		return types.Unknown
	case ast.While:
		c.whileStmt(stmt, scope)
		return types.Unknown
	case ast.For:
		c.forStmt(stmt, scope)
		return types.Unknown
	case ast.Return:
		if value := trimSemi(stmt[1:]); len(value) > 0 {
			return c.expression(value, scope)
		}
		return types.Unknown
	case ast.Break:
		return types.Unknown
	}

	return c.Check(trimSemi(stmt), scope)
}

// lower turns an IR operand into what Check expects: identifiers become
// typed markers of their current binding, and boolean or nil literals have
// no type of their own.
func (c *Checker) lower(node ast.Node, scope *env.Scope) ast.Node {
	//exhaustive:ignore
	switch node.Kind {
	case ast.Identifier:
		kind := ast.NumberType
		if typ, err := scope.Lookup(node.Lexeme); err == nil {
			kind = typ.Marker()
		}
		return ast.Marker(kind, node.Lexeme, node.Line)
	case ast.True, ast.False, ast.Nil:
		return ast.Node{Kind: ast.Unknown, Lexeme: node.Lexeme, Line: node.Line}
	default:
		return node
	}
}

// expression types an `operand (operator operand)*` run. Arithmetic runs
// between comparison operators are folded left to right; a run with a
// comparison has no primitive type.
func (c *Checker) expression(nodes []ast.Node, scope *env.Scope) types.Type {
	var (
		runs [][]ast.Node
		ops  []ast.Node
		run  []ast.Node
	)
	for _, n := range nodes {
		if n.Kind.IsComparison() {
			runs = append(runs, run)
			ops = append(ops, n)
			run = nil
			continue
		}
		run = append(run, c.lower(n, scope))
	}
	runs = append(runs, run)

	result := c.fold(runs[0], scope)
	for i, op := range ops {
		right := c.fold(runs[i+1], scope)
		if op.Kind != ast.And && op.Kind != ast.Or &&
			result != types.Unknown && right != types.Unknown && !result.Equals(right) {
			c.report(op, "cannot compare %s and %s", result, right)
		}
		result = right
	}

	if len(ops) > 0 {
		return types.Unknown
	}

	return result
}

func (c *Checker) fold(run []ast.Node, scope *env.Scope) types.Type {
	for len(run) > 5 {
		typ := c.Check(run[:3], scope)
		run = append([]ast.Node{typeNode(typ, run[2].Line)}, run[3:]...)
	}

	return c.Check(run, scope)
}

// assignment checks `name = expression ;`.
func (c *Checker) assignment(stmt []ast.Node, scope *env.Scope) types.Type {
	target := stmt[0]
	value := trimSemi(stmt[2:])
	if len(value) == 0 {
		c.report(stmt[1], "missing value in assignment to %s", target.Lexeme)
		return types.Unknown
	}

	typ := c.expression(value, scope)
	set := ast.Node{Kind: ast.Set, Lexeme: stmt[1].Lexeme, Line: stmt[1].Line}

	return c.Check([]ast.Node{set, c.lower(target, scope), typeNode(typ, target.Line)}, scope)
}

// function checks a function or method declaration. Parameters are bound from
// the next recorded signature, or as unknown when there is none.
func (c *Checker) function(stmt []ast.Node, scope *env.Scope) {
	if len(stmt) < 3 {
		c.report(stmt[0], "unrecognized expression shape")
		return
	}

	name := stmt[1]
	fnScope := scope.Child()

	open := indexOf(stmt, ast.LeftParen)
	closeParen := closing(stmt, open)
	if open < 0 || closeParen < 0 {
		c.report(name, "malformed parameter list of %s", name.Lexeme)
		return
	}
	for _, n := range stmt[open+1 : closeParen] {
		if n.Kind == ast.Identifier {
			fnScope.Define(n.Lexeme, types.Unknown)
		}
	}
	if sig, ok := c.signature(name.Lexeme); ok {
		for _, p := range sig.Params {
			fnScope.Define(p.Name, types.FromName(p.Type))
		}
	}

	body := stmt[closeParen+1:]
	if n := len(body); n > 0 && body[n-1].Kind == ast.Main {
		body = body[:n-1]
	}
	if len(body) == 0 || body[0].Kind != ast.LeftBrace {
		c.report(name, "missing body of %s", name.Lexeme)
		return
	}

	c.logger.Debug("check function", "name", name.Lexeme, "depth", fnScope.Depth())
	c.Check(body, fnScope)
}

// signature hands out signatures in declaration order.
func (c *Checker) signature(name string) (ast.Signature, bool) {
	if c.next < len(c.signatures) && c.signatures[c.next].Name == name {
		sig := c.signatures[c.next]
		c.next++
		return sig, true
	}

	return ast.Signature{}, false
}

func (c *Checker) class(stmt []ast.Node, scope *env.Scope) {
	open := indexOf(stmt, ast.LeftBrace)
	if open < 0 {
		c.report(stmt[0], "missing body of class")
		return
	}

	body := stmt[open+1:]
	if n := len(body); n > 0 && body[n-1].Kind == ast.RightBrace {
		body = body[:n-1]
	}

	classScope := scope.Child()
	for _, method := range Statements(body) {
		if method[0].Kind != ast.Fn {
			c.report(method[0], "unrecognized class member")
			continue
		}
		c.function(method, classScope)
	}
}

// call checks that identifier arguments resolve and, when the callee has a
// signature, that arity and argument types agree with it.
func (c *Checker) call(stmt []ast.Node, scope *env.Scope) {
	callee := stmt[0]
	closeParen := closing(stmt, 1)
	if closeParen < 0 {
		c.report(callee, "unterminated call of %s", callee.Lexeme)
		return
	}

	var args []types.Type
	for _, n := range stmt[2:closeParen] {
		if n.Kind == ast.Comma {
			continue
		}
		args = append(args, c.Check([]ast.Node{c.lower(n, scope)}, scope))
	}

	sig, ok := c.byName[callee.Lexeme]
	if !ok {
		return
	}
	if len(args) != len(sig.Params) {
		c.report(callee, "%s expects %d arguments, got %d", callee.Lexeme, len(sig.Params), len(args))
		return
	}
	for i, p := range sig.Params {
		want := types.FromName(p.Type)
		if want != types.Unknown && args[i] != types.Unknown && !want.Equals(args[i]) {
			c.report(callee, "argument %s of %s must be %s, got %s", p.Name, callee.Lexeme, want, args[i])
		}
	}
}

var interpolation = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// print checks the variables interpolated into the format string.
func (c *Checker) print(stmt []ast.Node, scope *env.Scope) {
	for _, n := range stmt {
		if n.Kind != ast.String {
			continue
		}
		for _, m := range interpolation.FindAllStringSubmatch(n.Lexeme, -1) {
			if _, err := scope.Lookup(m[1]); err != nil {
				c.report(ast.Node{Kind: ast.Identifier, Lexeme: m[1], Line: n.Line}, "undefined variable: %v", err)
			}
		}
	}
}

// condition checks the parenthesized expression after a keyword and returns
// what follows it.
func (c *Checker) condition(stmt []ast.Node, scope *env.Scope) []ast.Node {
	closeParen := closing(stmt, 1)
	if closeParen < 0 {
		c.report(stmt[0], "unterminated %s condition", stmt[0].Lexeme)
		return nil
	}
	if cond := stmt[2:closeParen]; len(cond) > 0 {
		c.expression(cond, scope)
	}

	return stmt[closeParen+1:]
}

func (c *Checker) ifStmt(stmt []ast.Node, scope *env.Scope) {
	rest := c.condition(stmt, scope)
	if len(rest) == 0 {
		return
	}

	end := statementEnd(rest)
	c.statement(rest[:end], scope)

	if end < len(rest) && rest[end].Kind == ast.Else {
		c.statement(rest[end+1:], scope)
	}
}

func (c *Checker) whileStmt(stmt []ast.Node, scope *env.Scope) {
	if body := c.condition(stmt, scope); len(body) > 0 {
		c.statement(body, scope)
	}
}

// forStmt checks `for ( init cond ; step ) body`; the initializer is bound
// in a scope enclosing the body.
func (c *Checker) forStmt(stmt []ast.Node, scope *env.Scope) {
	closeParen := closing(stmt, 1)
	if closeParen < 0 {
		c.report(stmt[0], "unterminated for clauses")
		return
	}

	loop := scope.Child()
	header := stmt[2:closeParen]

	init := header[:indexOf(header, ast.SemiColon)+1]
	if len(init) > 1 {
		c.statement(init, loop)
	}
	header = header[len(init):]

	condEnd := indexOf(header, ast.SemiColon)
	if condEnd < 0 {
		condEnd = len(header)
	}
	if cond := header[:condEnd]; len(cond) > 0 {
		c.expression(cond, loop)
	}
	if condEnd < len(header) {
		if step := header[condEnd+1:]; len(step) > 0 {
			c.statement(step, loop)
		}
	}

	if body := stmt[closeParen+1:]; len(body) > 0 {
		c.statement(body, loop)
	}
}

func trimSemi(nodes []ast.Node) []ast.Node {
	if n := len(nodes); n > 0 && nodes[n-1].Kind == ast.SemiColon {
		return nodes[:n-1]
	}
	return nodes
}

func indexOf(nodes []ast.Node, kind ast.Kind) int {
	for i, n := range nodes {
		if n.Kind == kind {
			return i
		}
	}
	return -1
}

// closing returns the index of the ')' matching the '(' at open, or -1.
func closing(nodes []ast.Node, open int) int {
	if open < 0 || open >= len(nodes) || nodes[open].Kind != ast.LeftParen {
		return -1
	}

	depth := 0
	for i := open; i < len(nodes); i++ {
		//exhaustive:ignore
		switch nodes[i].Kind {
		case ast.LeftParen:
			depth++
		case ast.RightParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
