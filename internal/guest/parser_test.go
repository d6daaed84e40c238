package guest

import "testing"

func TestParseLetAndPrint(t *testing.T) {
	stmts, err := NewParser(`let x = 1 + 2; print x;`).ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}

	let, ok := stmts[0].(LetStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want LetStmt", stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("let.Name = %q, want %q", let.Name, "x")
	}
	bin, ok := let.Value.(BinaryExpr)
	if !ok {
		t.Fatalf("let.Value is %T, want BinaryExpr", let.Value)
	}
	if bin.Op != TokenPlus {
		t.Errorf("bin.Op = %s, want +", bin.Op)
	}

	print, ok := stmts[1].(PrintStmt)
	if !ok {
		t.Fatalf("stmts[1] is %T, want PrintStmt", stmts[1])
	}
	if _, ok := print.Value.(Ident); !ok {
		t.Errorf("print.Value is %T, want Ident", print.Value)
	}
}

func TestParseArrayLiteralAndMethodChain(t *testing.T) {
	stmts, err := NewParser(`let xs = [1, 2, 3]; xs.push(4).len();`).ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	let := stmts[0].(LetStmt)
	arr, ok := let.Value.(ArrayLit)
	if !ok {
		t.Fatalf("let.Value is %T, want ArrayLit", let.Value)
	}
	if len(arr.Elements) != 3 {
		t.Errorf("got %d elements, want 3", len(arr.Elements))
	}

	exprStmt, ok := stmts[1].(ExprStmt)
	if !ok {
		t.Fatalf("stmts[1] is %T, want ExprStmt", stmts[1])
	}
	outer, ok := exprStmt.Value.(MethodCall)
	if !ok {
		t.Fatalf("exprStmt.Value is %T, want MethodCall", exprStmt.Value)
	}
	if outer.Method != "len" {
		t.Errorf("outer.Method = %q, want %q", outer.Method, "len")
	}
	inner, ok := outer.Receiver.(MethodCall)
	if !ok {
		t.Fatalf("outer.Receiver is %T, want MethodCall", outer.Receiver)
	}
	if inner.Method != "push" || len(inner.Args) != 1 {
		t.Errorf("inner = %+v, want push(1 arg)", inner)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	stmts, err := NewParser(`print 1 + 2 * 3;`).ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	top := stmts[0].(PrintStmt).Value.(BinaryExpr)
	if top.Op != TokenPlus {
		t.Fatalf("top.Op = %s, want +", top.Op)
	}
	if _, ok := top.Left.(IntLit); !ok {
		t.Errorf("top.Left is %T, want IntLit", top.Left)
	}
	right, ok := top.Right.(BinaryExpr)
	if !ok {
		t.Fatalf("top.Right is %T, want BinaryExpr", top.Right)
	}
	if right.Op != TokenStar {
		t.Errorf("right.Op = %s, want *", right.Op)
	}
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	_, err := NewParser(`let x = 1`).ParseProgram()
	if err == nil {
		t.Error("expected an error for a missing semicolon")
	}
}
