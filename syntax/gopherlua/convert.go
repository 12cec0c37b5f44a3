package gopherlua

import (
	"regexp"
	"strings"

	"github.com/yuin/gopher-lua/ast"

	"github.com/Figliar/extension-plus-API/syntax"
)

var identifierLike = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// converter maps gopher-lua statements and expressions onto the node kinds
// the lowering engine registers translators for
type converter struct {
	src *source
}

func (c *converter) stmt(st ast.Stmt) item {
	first := st.Line()
	last := stmtLast(st)
	simple := func(el *syntax.Element) item {
		return item{el: el, first: first, last: last}
	}

	switch x := st.(type) {
	case *ast.AssignStmt:
		el := syntax.New("variable_assignment", "",
			c.list("variable_list", x.Lhs),
			syntax.Token("="),
			c.list("expression_list", x.Rhs))
		return simple(el.At(first, c.src.column(first, "")))

	case *ast.LocalAssignStmt:
		if fn, ok := c.localFunction(x); ok {
			return c.localFunctionItem(x.Names[0], fn, first)
		}
		names := syntax.New("variable_list", "")
		for i, name := range x.Names {
			if i > 0 {
				names.Append(syntax.Token(","))
			}
			names.Append(syntax.Leaf("identifier", name).At(first, c.src.column(first, name)))
		}
		el := syntax.New("local_variable_declaration", "", syntax.Token("local"), names)
		if len(x.Exprs) > 0 {
			el.Append(syntax.Token("="), c.list("expression_list", x.Exprs))
		}
		return simple(el.At(first, c.src.column(first, "local")))

	case *ast.FuncCallStmt:
		return simple(c.expr(x.Expr))

	case *ast.DoBlockStmt:
		blk, b := c.block(x.Stmts, first, last)
		el := syntax.New("do_statement", "", syntax.Token("do"), blk, syntax.Token("end"))
		return item{el: el.At(first, c.src.column(first, "do")), first: first, last: last, bodies: []*body{b}}

	case *ast.WhileStmt:
		blk, b := c.block(x.Stmts, first, last)
		el := syntax.New("while_statement", "",
			syntax.Token("while"), c.expr(x.Condition), syntax.Token("do"), blk, syntax.Token("end"))
		return item{el: el.At(first, c.src.column(first, "while")), first: first, last: last, bodies: []*body{b}}

	case *ast.RepeatStmt:
		blk, b := c.block(x.Stmts, first, last)
		el := syntax.New("repeat_statement", "",
			syntax.Token("repeat"), blk, syntax.Token("until"), c.expr(x.Condition))
		return item{el: el.At(first, c.src.column(first, "repeat")), first: first, last: last, bodies: []*body{b}}

	case *ast.IfStmt:
		return c.ifItem(x, first, last)

	case *ast.NumberForStmt:
		el := syntax.New("for_numeric_statement", "",
			syntax.Token("for"),
			syntax.Leaf("identifier", x.Name).At(first, c.src.column(first, x.Name)),
			syntax.Token("="),
			c.expr(x.Init),
			syntax.Token(","),
			c.expr(x.Limit))
		if x.Step != nil {
			el.Append(syntax.Token(","), c.expr(x.Step))
		}
		blk, b := c.block(x.Stmts, first, last)
		el.Append(syntax.Token("do"), blk, syntax.Token("end"))
		return item{el: el.At(first, c.src.column(first, "for")), first: first, last: last, bodies: []*body{b}}

	case *ast.GenericForStmt:
		names := syntax.New("variable_list", "")
		for i, name := range x.Names {
			if i > 0 {
				names.Append(syntax.Token(","))
			}
			names.Append(syntax.Leaf("identifier", name).At(first, c.src.column(first, name)))
		}
		blk, b := c.block(x.Stmts, first, last)
		el := syntax.New("for_generic_statement", "",
			syntax.Token("for"), names, syntax.Token("in"),
			c.list("expression_list", x.Exprs),
			syntax.Token("do"), blk, syntax.Token("end"))
		return item{el: el.At(first, c.src.column(first, "for")), first: first, last: last, bodies: []*body{b}}

	case *ast.FuncDefStmt:
		return c.functionItem(x, first, last)

	case *ast.ReturnStmt:
		el := syntax.New("return_statement", "", syntax.Token("return"))
		if len(x.Exprs) > 0 {
			el.Append(c.list("expression_list", x.Exprs))
		}
		return simple(el.At(first, c.src.column(first, "return")))

	case *ast.BreakStmt:
		return simple(syntax.Leaf("break_statement", "break").At(first, c.src.column(first, "break")))

	default:
		return simple(syntax.Leaf("unsupported_statement", strings.TrimSpace(c.line(first))).At(first, c.src.column(first, "")))
	}
}

// block creates the block element of a body spanning [first, last]
func (c *converter) block(stmts []ast.Stmt, first, last int) (*syntax.Element, *body) {
	el := syntax.New("block", "")
	b := &body{target: el, first: first, last: last}
	for _, st := range stmts {
		b.items = append(b.items, c.stmt(st))
	}
	return el, b
}

func (c *converter) ifItem(x *ast.IfStmt, first, last int) item {
	el := syntax.New("if_statement", "", syntax.Token("if"), c.expr(x.Condition), syntax.Token("then"))
	el.At(first, c.src.column(first, "if"))
	thenBlock, thenBody := c.block(x.Then, first, last)
	el.Append(thenBlock)
	bodies := []*body{thenBody}

	start := func(b *body, line int) {
		bodies[len(bodies)-1].last = line - 1
		b.first = line
		bodies = append(bodies, b)
	}

	cur := x
	for {
		next := c.elseIf(cur)
		if next == nil {
			break
		}
		line := next.Line()
		clause := syntax.New("elseif_clause", "", syntax.Token("elseif"), c.expr(next.Condition), syntax.Token("then"))
		clause.At(line, c.src.column(line, "elseif"))
		blk, b := c.block(next.Then, line, last)
		clause.Append(blk)
		el.Append(clause)
		start(b, line)
		cur = next
	}

	if line := c.elseLine(cur, last); line > 0 {
		clause := syntax.New("else_clause", "", syntax.Token("else")).At(line, c.src.column(line, "else"))
		blk, b := c.block(cur.Else, line, last)
		clause.Append(blk)
		el.Append(clause)
		start(b, line)
	}
	el.Append(syntax.Token("end"))
	return item{el: el, first: first, last: last, bodies: bodies}
}

// elseIf returns the if statement an elseif keyword introduced under cur
func (c *converter) elseIf(cur *ast.IfStmt) *ast.IfStmt {
	if len(cur.Else) != 1 {
		return nil
	}
	next, ok := cur.Else[0].(*ast.IfStmt)
	if !ok || !c.src.hasWord(next.Line(), "elseif") {
		return nil
	}
	return next
}

// elseLine finds the line of the else keyword closing cur, or 0. An empty
// else body leaves no statement behind, so the keyword is searched between
// the last then statement and the end of the statement.
func (c *converter) elseLine(cur *ast.IfStmt, last int) int {
	after := cur.Line()
	if n := len(cur.Then); n > 0 {
		after = max(after, stmtLast(cur.Then[n-1]))
	}
	if len(cur.Else) > 0 {
		to := cur.Else[0].Line()
		if line := c.src.lastWordLine("else", after, to); line > 0 {
			return line
		}
		return to
	}
	return c.src.lastWordLine("else", after, last)
}

// localFunction reports whether x was written "local function name"
func (c *converter) localFunction(x *ast.LocalAssignStmt) (*ast.FunctionExpr, bool) {
	if len(x.Names) != 1 || len(x.Exprs) != 1 {
		return nil, false
	}
	fn, ok := x.Exprs[0].(*ast.FunctionExpr)
	if !ok {
		return nil, false
	}
	pattern := `\blocal\s+function\s+` + regexp.QuoteMeta(x.Names[0]) + `\b`
	matched, _ := regexp.MatchString(pattern, c.line(x.Line()))
	return fn, matched
}

func (c *converter) localFunctionItem(name string, fn *ast.FunctionExpr, first int) item {
	last := max(first, fn.LastLine(), stmtsLast(fn.Stmts))
	el := syntax.New("local_function_definition_statement", "",
		syntax.Token("local"),
		syntax.Token("function"),
		syntax.Leaf("identifier", name).At(first, c.src.column(first, name)))
	el.At(first, c.src.column(first, "local"))
	b := c.functionBody(el, fn.ParList, fn.Stmts, first, last)
	return item{el: el, first: first, last: last, bodies: []*body{b}}
}

func (c *converter) functionItem(x *ast.FuncDefStmt, first, last int) item {
	name := c.exprText(x.Name.Func)
	params := x.Func.ParList
	if x.Name.Func == nil {
		name = c.exprText(x.Name.Receiver) + ":" + x.Name.Method
		if params != nil && len(params.Names) > 0 && params.Names[0] == "self" {
			params = &ast.ParList{HasVargs: params.HasVargs, Names: params.Names[1:]}
		}
	}
	last = max(last, x.Func.LastLine())
	el := syntax.New("function_definition_statement", "",
		syntax.Token("function"),
		syntax.Leaf("function_name", name).At(first, c.src.column(first, name)))
	el.At(first, c.src.column(first, "function"))
	b := c.functionBody(el, params, x.Func.Stmts, first, last)
	return item{el: el, first: first, last: last, bodies: []*body{b}}
}

// functionBody appends "(" parameters ")" block "end" to a definition
func (c *converter) functionBody(el *syntax.Element, params *ast.ParList, stmts []ast.Stmt, first, last int) *body {
	list := syntax.New("parameter_list", "")
	n := 0
	add := func(p *syntax.Element) {
		if n > 0 {
			list.Append(syntax.Token(","))
		}
		list.Append(p)
		n++
	}
	if params != nil {
		for _, name := range params.Names {
			add(syntax.Leaf("identifier", name).At(first, c.src.column(first, name)))
		}
		if params.HasVargs {
			add(syntax.Leaf("vararg_expression", "...").At(first, c.src.column(first, "...")))
		}
	}
	el.Append(syntax.Token("("))
	if n > 0 {
		el.Append(list)
	}
	blk, b := c.block(stmts, first, last)
	el.Append(syntax.Token(")"), blk, syntax.Token("end"))
	return b
}

// list builds a comma separated list element of exprs
func (c *converter) list(kind string, exprs []ast.Expr) *syntax.Element {
	el := syntax.New(kind, "")
	for i, e := range exprs {
		if i > 0 {
			el.Append(syntax.Token(","))
		}
		el.Append(c.expr(e))
	}
	return el
}

func (c *converter) expr(e ast.Expr) *syntax.Element {
	if e == nil {
		return syntax.NewMissing("expression")
	}
	line := e.Line()
	switch x := e.(type) {
	case *ast.TrueExpr:
		return syntax.Token("true").At(line, c.src.column(line, "true"))
	case *ast.FalseExpr:
		return syntax.Token("false").At(line, c.src.column(line, "false"))
	case *ast.NilExpr:
		return syntax.Token("nil").At(line, c.src.column(line, "nil"))
	case *ast.NumberExpr:
		return syntax.Leaf("number", x.Value).At(line, c.src.column(line, x.Value))
	case *ast.StringExpr:
		return syntax.Leaf("string", `"`+x.Value+`"`).At(line, c.src.column(line, x.Value))
	case *ast.Comma3Expr:
		return syntax.Leaf("vararg_expression", "...").At(line, c.src.column(line, "..."))
	case *ast.IdentExpr:
		return syntax.Leaf("identifier", x.Value).At(line, c.src.column(line, x.Value))

	case *ast.AttrGetExpr:
		base := c.expr(x.Object)
		if key, ok := x.Key.(*ast.StringExpr); ok && identifierLike.MatchString(key.Value) {
			keyLine := max(key.Line(), line)
			return syntax.New("variable", base.Text()+"."+key.Value,
				base,
				syntax.Token("."),
				syntax.Leaf("identifier", key.Value).At(keyLine, c.src.column(keyLine, key.Value)))
		}
		key := c.expr(x.Key)
		return syntax.New("variable", base.Text()+"["+key.Text()+"]",
			base, syntax.Token("["), key, syntax.Token("]"))

	case *ast.TableExpr:
		el := syntax.New("table", "", syntax.Token("{")).At(line, c.src.column(line, "{"))
		if len(x.Fields) > 0 {
			fields := syntax.New("field_list", "")
			for i, f := range x.Fields {
				if i > 0 {
					fields.Append(syntax.Token(","))
				}
				fields.Append(c.field(f))
			}
			el.Append(fields)
		}
		return el.Append(syntax.Token("}"))

	case *ast.FuncCallExpr:
		return c.call(x)

	case *ast.LogicalOpExpr:
		return c.binary(x.Operator, x.Lhs, x.Rhs)
	case *ast.RelationalOpExpr:
		return c.binary(x.Operator, x.Lhs, x.Rhs)
	case *ast.ArithmeticOpExpr:
		return c.binary(x.Operator, x.Lhs, x.Rhs)
	case *ast.StringConcatOpExpr:
		return c.binary("..", x.Lhs, x.Rhs)

	case *ast.UnaryMinusOpExpr:
		return c.unary("-", x.Expr, line)
	case *ast.UnaryNotOpExpr:
		return c.unary("not", x.Expr, line)
	case *ast.UnaryLenOpExpr:
		return c.unary("#", x.Expr, line)

	case *ast.FunctionExpr:
		return syntax.Leaf("function_definition", "function").At(line, c.src.column(line, "function"))

	default:
		return syntax.Leaf("unsupported_expression", "").At(line, c.src.column(line, ""))
	}
}

func (c *converter) field(f *ast.Field) *syntax.Element {
	value := c.expr(f.Value)
	if f.Key == nil {
		return syntax.New("field", "", value)
	}
	if key, ok := f.Key.(*ast.StringExpr); ok && identifierLike.MatchString(key.Value) {
		line := max(key.Line(), f.Value.Line())
		name := syntax.Leaf("identifier", key.Value).At(line, c.src.column(line, key.Value))
		return syntax.New("field", "", name, syntax.Token("="), value)
	}
	return syntax.New("field", "", syntax.Token("["), c.expr(f.Key), syntax.Token("]"), syntax.Token("="), value)
}

func (c *converter) call(x *ast.FuncCallExpr) *syntax.Element {
	var callee *syntax.Element
	if x.Method != "" {
		obj := c.expr(x.Receiver)
		callee = syntax.Leaf("method_index_expression", obj.Text()+":"+x.Method).At(obj.Pos().Line, obj.Pos().Column)
	} else {
		callee = c.expr(x.Func)
	}

	args := syntax.New("arguments", "", syntax.Token("("))
	texts := make([]string, 0, len(x.Args))
	if len(x.Args) > 0 {
		list := c.list("expression_list", x.Args)
		for _, a := range listItems(list) {
			texts = append(texts, a.Text())
		}
		args.Append(list)
	}
	args.Append(syntax.Token(")"))
	return syntax.New("call", callee.Text()+"("+strings.Join(texts, ", ")+")", callee, args)
}

func (c *converter) binary(op string, lhs, rhs ast.Expr) *syntax.Element {
	return syntax.New("binary_expression", "", c.expr(lhs), syntax.Token(op), c.expr(rhs))
}

func (c *converter) unary(op string, operand ast.Expr, line int) *syntax.Element {
	return syntax.New("unary_expression", "", syntax.Token(op), c.expr(operand)).At(line, c.src.column(line, op))
}

// exprText renders a function name expression such as a.b.c
func (c *converter) exprText(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return c.expr(e).Text()
}

func (c *converter) line(n int) string {
	if n < 1 || n > len(c.src.lines) {
		return ""
	}
	return c.src.lines[n-1]
}

func listItems(list *syntax.Element) []syntax.Node {
	var out []syntax.Node
	for _, n := range syntax.Children(list) {
		if n.Kind() != "," {
			out = append(out, n)
		}
	}
	return out
}

// stmtLast is the last line a statement occupies
func stmtLast(st ast.Stmt) int {
	last := max(st.Line(), st.LastLine())
	switch x := st.(type) {
	case *ast.AssignStmt:
		last = max(last, exprsLast(x.Lhs), exprsLast(x.Rhs))
	case *ast.LocalAssignStmt:
		last = max(last, exprsLast(x.Exprs))
	case *ast.FuncCallStmt:
		last = max(last, exprLast(x.Expr))
	case *ast.ReturnStmt:
		last = max(last, exprsLast(x.Exprs))
	case *ast.DoBlockStmt:
		last = max(last, stmtsLast(x.Stmts))
	case *ast.WhileStmt:
		last = max(last, stmtsLast(x.Stmts))
	case *ast.RepeatStmt:
		last = max(last, exprLast(x.Condition))
	case *ast.IfStmt:
		last = max(last, stmtsLast(x.Then), stmtsLast(x.Else))
	case *ast.NumberForStmt:
		last = max(last, stmtsLast(x.Stmts))
	case *ast.GenericForStmt:
		last = max(last, stmtsLast(x.Stmts))
	case *ast.FuncDefStmt:
		last = max(last, x.Func.LastLine(), stmtsLast(x.Func.Stmts))
	}
	return last
}

func stmtsLast(stmts []ast.Stmt) int {
	last := 0
	for _, st := range stmts {
		last = max(last, stmtLast(st))
	}
	return last
}

// exprLast is the last line an expression reaches
func exprLast(e ast.Expr) int {
	if e == nil {
		return 0
	}
	last := max(e.Line(), e.LastLine())
	switch x := e.(type) {
	case *ast.AttrGetExpr:
		last = max(last, exprLast(x.Object), exprLast(x.Key))
	case *ast.TableExpr:
		for _, f := range x.Fields {
			last = max(last, exprLast(f.Key), exprLast(f.Value))
		}
	case *ast.FuncCallExpr:
		last = max(last, exprLast(x.Func), exprLast(x.Receiver), exprsLast(x.Args))
	case *ast.LogicalOpExpr:
		last = max(last, exprLast(x.Lhs), exprLast(x.Rhs))
	case *ast.RelationalOpExpr:
		last = max(last, exprLast(x.Lhs), exprLast(x.Rhs))
	case *ast.ArithmeticOpExpr:
		last = max(last, exprLast(x.Lhs), exprLast(x.Rhs))
	case *ast.StringConcatOpExpr:
		last = max(last, exprLast(x.Lhs), exprLast(x.Rhs))
	case *ast.UnaryMinusOpExpr:
		last = max(last, exprLast(x.Expr))
	case *ast.UnaryNotOpExpr:
		last = max(last, exprLast(x.Expr))
	case *ast.UnaryLenOpExpr:
		last = max(last, exprLast(x.Expr))
	case *ast.FunctionExpr:
		last = max(last, stmtsLast(x.Stmts))
	}
	return last
}

func exprsLast(exprs []ast.Expr) int {
	last := 0
	for _, e := range exprs {
		last = max(last, exprLast(e))
	}
	return last
}
