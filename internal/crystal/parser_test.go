package crystal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) Statement {
	t.Helper()
	stmts, err := Parse(src, "t.cry")
	require.Nil(t, err, "parse error: %v", err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func TestParseSet(t *testing.T) {
	stmt := parseOne(t, "set global 'x' = 1 + 2\n")
	set, ok := stmt.(*SetStmt)
	require.True(t, ok)
	assert.Equal(t, GlobalScope, set.Scope)
	assert.Equal(t, "x", set.Name)

	add, ok := set.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)
}

func TestParsePrecedence(t *testing.T) {
	stmt := parseOne(t, "set local 'x' = 1 + 2 * 3\n")
	set := stmt.(*SetStmt)

	add, ok := set.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)

	mul, ok := add.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpMultiply, mul.Op)
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	stmt := parseOne(t, "set local 'x' = (1 + 2) * 3\n")
	set := stmt.(*SetStmt)

	mul, ok := set.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpMultiply, mul.Op)

	add, ok := mul.Left.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)
}

func TestParseIfOtherwise(t *testing.T) {
	stmt := parseOne(t, "if 'x' > 1\nsay \"big\"\notherwise\nsay \"small\"\nend if\n")
	ifStmt, ok := stmt.(*IfStmt)
	require.True(t, ok)

	cmp, ok := ifStmt.Cond.(*CompareCond)
	require.True(t, ok)
	assert.Equal(t, CmpGreater, cmp.Op)
	assert.Len(t, ifStmt.Then, 1)
	assert.Len(t, ifStmt.Otherwise, 1)
}

func TestParseWordComparisonOperators(t *testing.T) {
	tests := []struct {
		src string
		op  CompareOp
	}{
		{"if 'x' greater than 1\nsay \"a\"\nend if\n", CmpGreater},
		{"if 'x' less than 1\nsay \"a\"\nend if\n", CmpLess},
		{"if 'x' equals 1\nsay \"a\"\nend if\n", CmpEqual},
		{"if 'x' is 1\nsay \"a\"\nend if\n", CmpEqual},
	}
	for _, tt := range tests {
		stmt := parseOne(t, tt.src)
		cmp := stmt.(*IfStmt).Cond.(*CompareCond)
		assert.Equal(t, tt.op, cmp.Op, "source: %s", tt.src)
	}
}

func TestParseExistsCondition(t *testing.T) {
	stmt := parseOne(t, "if {\"/etc/hosts\"} exists\nsay \"there\"\nend if\n")
	cond, ok := stmt.(*IfStmt).Cond.(*ExistsCond)
	require.True(t, ok)
	lit, ok := cond.Path.(*StringLit)
	require.True(t, ok)
	assert.Equal(t, "/etc/hosts", lit.Text)
}

func TestParseRepeatVariants(t *testing.T) {
	tests := []struct {
		src  string
		mode RepeatMode
	}{
		{"repeat 3\nsay \"x\"\nend repeat\n", RepeatCount},
		{"repeat infinite\nsay \"x\"\nend repeat\n", RepeatInfinite},
		{"repeat while 'i' < 3\nsay \"x\"\nend repeat\n", RepeatWhile},
		{"repeat until 'i' = 3\nsay \"x\"\nend repeat\n", RepeatUntil},
		{"repeat for each 'f' in \"/data\"\nsay 'f'\nend repeat\n", RepeatForEach},
	}
	for _, tt := range tests {
		stmt := parseOne(t, tt.src)
		rep, ok := stmt.(*RepeatStmt)
		require.True(t, ok, "source: %s", tt.src)
		assert.Equal(t, tt.mode, rep.Mode, "source: %s", tt.src)
		assert.Len(t, rep.Body, 1)
	}
}

func TestParseChain(t *testing.T) {
	stmt := parseOne(t, "say \"a\"; say \"b\"; say \"c\"\n")
	chain, ok := stmt.(*ChainStmt)
	require.True(t, ok)
	assert.Len(t, chain.Stmts, 3)
}

func TestParseTry(t *testing.T) {
	stmt := parseOne(t, "try\nerror \"x\"\ncatch\nsay \"caught\"\nend try\n")
	try, ok := stmt.(*TryStmt)
	require.True(t, ok)
	assert.Len(t, try.Try, 1)
	assert.Len(t, try.Catch, 1)
}

func TestParseFunctionAndCall(t *testing.T) {
	stmts, err := Parse("function greet\nsay \"hi\"\nend function\ngreet\n", "t.cry")
	require.Nil(t, err)
	require.Len(t, stmts, 2)

	def, ok := stmts[0].(*FuncDefStmt)
	require.True(t, ok)
	assert.Equal(t, "greet", def.Name)
	assert.Len(t, def.Body, 1)

	call, ok := stmts[1].(*FuncCallStmt)
	require.True(t, ok)
	assert.Equal(t, "greet", call.Name)
}

func TestParseFileStatements(t *testing.T) {
	stmts, err := Parse(`copy "/a" to "/b" force
move "/b" to "/c"
delete "/c"
list folders in "/d"
create folder "/e"
make file "/f" "content" force
make folder "/g" "/h"
include "/lib.cry"
zip "/x" "/y" to "/out.zip"
unzip "/out.zip" to "/restore"
download "http://e.com/f" to "/f"
wait 5 minutes
cd "/tmp"
pwd
path add "/opt"
ping "example.com"
`, "t.cry")
	require.Nil(t, err)
	require.Len(t, stmts, 16)

	assert.True(t, stmts[0].(*CopyStmt).Force)
	assert.False(t, stmts[1].(*MoveStmt).Force)
	assert.Equal(t, ListFolders, stmts[3].(*ListStmt).Filter)
	assert.True(t, stmts[4].(*CreateStmt).Folder)
	assert.True(t, stmts[5].(*MakeFileStmt).Force)
	assert.Len(t, stmts[6].(*MakeFolderStmt).Paths, 2)
	assert.Len(t, stmts[8].(*ZipStmt).Sources, 2)
	assert.Equal(t, WaitMinutes, stmts[11].(*WaitStmt).Unit)
	assert.Equal(t, PathAdd, stmts[14].(*PathStmt).Action)
}

func TestParseBareNameIsFunctionCall(t *testing.T) {
	stmt := parseOne(t, "cleanup\n")
	call, ok := stmt.(*FuncCallStmt)
	require.True(t, ok)
	assert.Equal(t, "cleanup", call.Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated if", "if 1 = 1\nsay \"x\"\n"},
		{"set without equals", "set local 'x' 5\n"},
		{"statement starts with number", "42\n"},
		{"create without kind", "create \"/x\"\n"},
		{"wait without unit", "wait 5\n"},
		{"two statements one line", "say \"a\" say \"b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "t.cry")
			require.NotNil(t, err)
			assert.Equal(t, "t.cry", err.Location.Filename)
		})
	}
}

func TestParseErrorHelp(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantHelp string
	}{
		{"set without equals", "set local 'x' 5\n", "set local 'name' ="},
		{"unterminated block", "if 1 = 1\nsay \"x\"\n", "blocks close"},
		{"unquoted variable name", "set local x = 5\n", "single quotes"},
		{"missing scope", "set 'x' = 5\n", "declared 'local'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "t.cry")
			require.NotNil(t, err)
			assert.Contains(t, err.Help, tt.wantHelp)
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := Parse("say \"ok\"\nset local 'x' 5\n", "t.cry")
	require.NotNil(t, err)
	assert.Equal(t, 2, err.Location.Line)
}
