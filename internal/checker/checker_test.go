package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mypl/internal/errs"
	"mypl/internal/parser"
)

func checkSource(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return Check(prog)
}

func TestCheckValidProgramPasses(t *testing.T) {
	err := checkSource(t, `
		struct Node {
			int val;
			Node next;
		}
		int fib(int n) {
			if (n <= 1) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		void main() {
			int x = fib(8);
			Node n = new Node(1, null);
			print(itos(x));
		}
	`)
	assert.NoError(t, err)
}

func TestCheckMissingMainIsStaticError(t *testing.T) {
	err := checkSource(t, `int f() { return 1; }`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckIntInitializedWithDoubleIsStaticError(t *testing.T) {
	err := checkSource(t, `
		void main() {
			int x = 3.14;
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckStructArityMismatchIsStaticError(t *testing.T) {
	err := checkSource(t, `
		struct Pair {
			int a;
			int b;
		}
		void main() {
			Pair p = new Pair(1);
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckUndeclaredVariableIsStaticError(t *testing.T) {
	err := checkSource(t, `
		void main() {
			x = 1;
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckConditionMustBeBool(t *testing.T) {
	err := checkSource(t, `
		void main() {
			if (1) {
				print("no");
			}
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckNullIsCompatibleWithAnyDeclaredType(t *testing.T) {
	err := checkSource(t, `
		struct Node {
			int val;
			Node next;
		}
		void main() {
			Node n = null;
			array int xs = null;
		}
	`)
	assert.NoError(t, err)
}

func TestCheckUnspecifiedDictIsCompatibleWithAnyDictType(t *testing.T) {
	err := checkSource(t, `
		void main() {
			dict(string,int) d = new dict();
			d["a"] = 1;
		}
	`)
	assert.NoError(t, err)
}

func TestCheckPrintRejectsStructArgument(t *testing.T) {
	err := checkSource(t, `
		struct Node {
			int val;
		}
		void main() {
			Node n = new Node(1);
			print(n);
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}

func TestCheckBuiltinArityMismatch(t *testing.T) {
	err := checkSource(t, `
		void main() {
			print();
		}
	`)
	require.Error(t, err)
	assert.True(t, errs.IsStaticError(err))
}
