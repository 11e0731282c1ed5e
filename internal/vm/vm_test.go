package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mypl/internal/checker"
	"mypl/internal/codegen"
	"mypl/internal/errs"
	"mypl/internal/parser"
)

// runSource lexes, parses, checks, and generates src, then runs it with
// stdin as the VM's input stream, returning everything written and any
// fatal error.
func runSource(t *testing.T, src, stdin string) (string, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NoError(t, checker.Check(prog))
	templates := codegen.Generate(prog)

	var out strings.Builder
	m := New(templates, &out, strings.NewReader(stdin))
	err = m.Run()
	return out.String(), err
}

func TestPrintStringLiteral(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			print("blue");
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "blue", out)
}

func TestArithmeticExpression(t *testing.T) {
	// No operator precedence: "3 + 4 * 3" folds right-to-left as
	// 3 + (4 * 3) = 15.
	out, err := runSource(t, `
		void main() {
			int x = 3 + 4 * 3;
			print(itos(x));
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "15", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, err := runSource(t, `
		int fib(int n) {
			if (n <= 1) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		void main() {
			print(itos(fib(8)));
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "21", out)
}

func TestWhileLoopCountsToFive(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			int i = 0;
			while (i < 5) {
				print(itos(i));
				i = i + 1;
			}
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "01234", out)
}

func TestForLoopCountsToFive(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			for (int i = 0; i < 5; i = i + 1) {
				print(itos(i));
			}
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "01234", out)
}

func TestStructWithRecursiveField(t *testing.T) {
	out, err := runSource(t, `
		struct Node {
			int val;
			Node next;
		}
		void main() {
			Node tail = new Node(2, null);
			Node head = new Node(1, tail);
			print(itos(head.val));
			print(itos(head.next.val));
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "12", out)
}

func TestDictRoundTripAndIn(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			dict(string,int) ages = new dict();
			ages["ann"] = 30;
			ages["bo"] = 40;
			print(itos(ages["ann"]));
			if (in(ages, "bo")) {
				print("yes");
			}
			if (in(ages, "cid")) {
				print("no");
			}
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "30yes", out)
}

func TestArrayOutOfBoundsIsVMError(t *testing.T) {
	_, err := runSource(t, `
		void main() {
			array int xs = new int[3];
			xs[5] = 1;
		}
	`, "")
	require.Error(t, err)
	assert.True(t, errs.IsVMError(err))
}

func TestDivisionByZeroIsVMError(t *testing.T) {
	_, err := runSource(t, `
		void main() {
			int x = 1 / 0;
		}
	`, "")
	require.Error(t, err)
	assert.True(t, errs.IsVMError(err))
}

func TestNullFieldAccessIsVMError(t *testing.T) {
	_, err := runSource(t, `
		struct Node {
			int val;
			Node next;
		}
		void main() {
			Node n = null;
			print(itos(n.val));
		}
	`, "")
	require.Error(t, err)
	assert.True(t, errs.IsVMError(err))
}

func TestMissingDictKeyIsVMError(t *testing.T) {
	_, err := runSource(t, `
		void main() {
			dict(string,int) ages = new dict();
			print(itos(ages["ghost"]));
		}
	`, "")
	require.Error(t, err)
	assert.True(t, errs.IsVMError(err))
}

func TestInputReadsOneLine(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			string name = input();
			print(name);
		}
	`, "ada\nrest")
	require.NoError(t, err)
	assert.Equal(t, "ada", out)
}

func TestGetCharacterAndLength(t *testing.T) {
	out, err := runSource(t, `
		void main() {
			string s = "hello";
			print(itos(length(s)));
			print(get(1, s));
		}
	`, "")
	require.NoError(t, err)
	assert.Equal(t, "5e", out)
}
