package parser_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/lexer"
	"github.com/takoeight0821/rustscript/parser"
	"github.com/takoeight0821/rustscript/token"
	"github.com/takoeight0821/rustscript/utils"
)

func parse(t *testing.T, source string) ([]ast.Node, error) {
	t.Helper()

	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("lex %q: %v", source, err)
	}

	return parser.Parse(tokens)
}

func TestParseFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		t.Run(testcase.Label, func(t *testing.T) {
			nodes, err := parse(t, testcase.Input)
			if err != nil {
				t.Fatalf("%s returned error: %v", testcase.Label, err)
			}
			if diff := cmp.Diff(testcase.Expected["parser"], ast.Dump(nodes)); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", testcase.Label, diff)
			}
		})
	}
}

func TestEmptyFunction(t *testing.T) {
	t.Parallel()

	nodes, err := parse(t, "fn helper() {}")
	if err != nil {
		t.Fatal(err)
	}
	want := []ast.Kind{ast.Fn, ast.Identifier, ast.LeftParen, ast.RightParen, ast.LeftBrace, ast.RightBrace}
	if diff := cmp.Diff(want, ast.Kinds(nodes)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	nodes, err = parse(t, "fn main() {}")
	if err != nil {
		t.Fatal(err)
	}
	want = append(want, ast.Main)
	if diff := cmp.Diff(want, ast.Kinds(nodes)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSetEntryPoint(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("fn main() {} fn start() {}")
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := parser.NewParser(tokens).SetEntryPoint("start").Parse()
	if err != nil {
		t.Fatal(err)
	}

	last := nodes[len(nodes)-1]
	if last.Kind != ast.Main || last.Lexeme != "start" {
		t.Errorf("expected trailing Main for start, got %v", last)
	}
	for _, n := range nodes[:len(nodes)-1] {
		if n.Kind == ast.Main {
			t.Errorf("unexpected Main node %v", n)
		}
	}
}

func TestNestedBlocksBalance(t *testing.T) {
	t.Parallel()

	nodes, err := parse(t, `fn main() {
	{
		{ let a = 1; }
	}
	if (a == 1) { print("x"); }
}`)
	if err != nil {
		t.Fatal(err)
	}

	opens, closes := 0, 0
	for _, n := range nodes {
		switch n.Kind {
		case ast.LeftBrace:
			opens++
		case ast.RightBrace:
			closes++
		}
	}
	if opens != closes || opens != 4 {
		t.Errorf("expected 4 balanced blocks, got %d opens and %d closes", opens, closes)
	}

	depth, err := ast.Depth(nodes)
	if err != nil {
		t.Fatal(err)
	}
	if depth != 3 {
		t.Errorf("expected depth 3, got %d", depth)
	}
}

func TestRecoverAfterBadLet(t *testing.T) {
	t.Parallel()

	nodes, err := parse(t, "let 5 = 10; let y = 20;")
	if err == nil {
		t.Fatal("expected a parse error")
	}

	diags := parser.Diagnostics(err)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d: %v", len(diags), err)
	}
	if diags[0].Token.Lexeme != "5" {
		t.Errorf("expected diagnostic at '5', got %v", diags[0].Token)
	}
	if got := diags[0].Error(); got != "[line 1] Error at '5': Expect variable name." {
		t.Errorf("unexpected message %q", got)
	}

	want := []ast.Node{
		{Kind: ast.Let, Lexeme: "let", Line: 1},
		{Kind: ast.Identifier, Lexeme: "y", Line: 1},
		{Kind: ast.Assign, Lexeme: "=", Line: 1},
		{Kind: ast.Number, Lexeme: "20", Literal: 20.0, Line: 1},
		{Kind: ast.SemiColon, Lexeme: ";", Line: 1},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoverInsideBlock(t *testing.T) {
	t.Parallel()

	nodes, err := parse(t, `fn main() { let = 1; print("ok"); }`)
	if len(parser.Diagnostics(err)) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}

	want := []ast.Kind{
		ast.Fn, ast.Identifier, ast.LeftParen, ast.RightParen, ast.LeftBrace,
		ast.Print, ast.LeftParen, ast.String, ast.RightParen, ast.SemiColon,
		ast.RightBrace, ast.Main,
	}
	if diff := cmp.Diff(want, ast.Kinds(nodes)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []string
	}{
		{"fn f(a: foo) {}", []string{"[line 1] Error at 'foo': Parameter requires a type."}},
		{"fn f(a) {}", []string{"[line 1] Error at ')': Parameter must be annotated as name: type."}},
		{"fn main() {", []string{"[line 1] Error at end: Expect '}' after block."}},
		{"5;", []string{"[line 1] Error at '5': Expect declaration."}},
		{"print(x);", []string{"[line 1] Error at 'x': Expect a format string."}},
		{"break\nlet x = 1;", []string{"[line 2] Error at 'let': Expect ';' after 'break'."}},
		{"let a = 1;\nlet b = ;\nlet c = \"s\";\nfoo(;", []string{
			"[line 2] Error at ';': Expect a string or number value.",
			"[line 4] Error at ';': Expect argument.",
		}},
	}

	for _, tt := range tests {
		_, err := parse(t, tt.input)
		var got []string
		for _, d := range parser.Diagnostics(err) {
			got = append(got, d.Error())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestSignatures(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`fn bad(a) {}
fn add(a: number, b: string) {}
class C { m(flag: bool) {} }
fn main() {}`)
	if err != nil {
		t.Fatal(err)
	}

	p := parser.NewParser(tokens)
	if _, err := p.Parse(); len(parser.Diagnostics(err)) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}

	want := []ast.Signature{
		{Name: "add", Params: []ast.Param{{Name: "a", Type: "number"}, {Name: "b", Type: "string"}}},
		{Name: "m", Params: []ast.Param{{Name: "flag", Type: "bool"}}},
		{Name: "main"},
	}
	if diff := cmp.Diff(want, p.Signatures()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestForLowering(t *testing.T) {
	t.Parallel()

	nodes, err := parse(t, `for (let i = 0; i < 3; i = i + 1) print("{}", i);`)
	if err != nil {
		t.Fatal(err)
	}

	want := []ast.Kind{
		ast.For, ast.LeftParen,
		ast.Let, ast.Identifier, ast.Assign, ast.Number, ast.SemiColon,
		ast.Identifier, ast.Less, ast.Number, ast.SemiColon,
		ast.Identifier, ast.Assign, ast.Identifier, ast.Plus, ast.Number,
		ast.RightParen,
		ast.Print, ast.LeftParen, ast.String, ast.RightParen, ast.SemiColon,
	}
	if diff := cmp.Diff(want, ast.Kinds(nodes)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingEOF(t *testing.T) {
	t.Parallel()

	tokens := []token.Token{
		{Kind: token.LET, Lexeme: "let", Line: 1},
		{Kind: token.IDENT, Lexeme: "x", Line: 1},
		{Kind: token.ASSIGN, Lexeme: "=", Line: 1},
		{Kind: token.NUMBER, Lexeme: "1", Line: 1, Literal: 1.0},
		{Kind: token.SEMICOLON, Lexeme: ";", Line: 1},
	}
	nodes, err := parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 5 {
		t.Errorf("expected 5 nodes, got %d", len(nodes))
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Errorf("empty input: %v", err)
	}
}

func TestPrintInterpolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{`print("{} and {}", a);`, "`${a} and {}`"},
		{`print("{} {}", "{}", x);`, "`${\"{}\"} ${x}`"},
		{"print(\"{}\", \"a\nb\");", "`${\"a\\nb\"}`"},
		{`print("n={}", 2);`, "`n=${2}`"},
		{`print("none", a);`, "`none`"},
	}

	for _, tt := range tests {
		nodes, err := parse(t, tt.input)
		if err != nil {
			t.Errorf("%q returned error: %v", tt.input, err)
			continue
		}
		if len(nodes) < 3 || nodes[2].Kind != ast.String {
			t.Errorf("%q: unexpected nodes %v", tt.input, nodes)
			continue
		}
		if diff := cmp.Diff(tt.want, nodes[2].Lexeme); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func BenchmarkFromTestData(b *testing.B) {
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)

	for _, testcase := range testcases {
		b.Run(testcase.Label, func(b *testing.B) {
			for range b.N {
				tokens, err := lexer.Lex(testcase.Input)
				if err != nil {
					b.Fatalf("lex: %v", err)
				}
				if _, err := parser.Parse(tokens); err != nil {
					b.Fatalf("%s returned error: %v", testcase.Label, err)
				}
			}
		})
	}
}
