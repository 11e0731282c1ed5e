package printer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"mypl/internal/parser"
	"mypl/internal/token"
)

// ignorePos drops source position from the comparison: printing and
// re-parsing relocates every token, so only Kind and Lexeme should match.
var ignorePos = cmpopts.IgnoreFields(token.Token{}, "Line", "Column")

func assertRoundTrips(t *testing.T, src string) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	var buf strings.Builder
	Print(&buf, prog)

	reparsed, err := parser.Parse(buf.String())
	require.NoError(t, err, "re-parsing printed output:\n%s", buf.String())

	if diff := cmp.Diff(prog, reparsed, ignorePos); diff != "" {
		t.Errorf("re-parsed AST differs from original (-want +got):\n%s", diff)
	}
}

func TestRoundTripStructAndRecursiveFunction(t *testing.T) {
	assertRoundTrips(t, `
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
			Node head = new Node(1, null);
			print(itos(fib(8)));
		}
	`)
}

func TestRoundTripArraysDictsAndLoops(t *testing.T) {
	assertRoundTrips(t, `
		void main() {
			array int xs = new int[3];
			xs[0] = 1;
			dict(string,int) ages = new dict();
			ages["ann"] = 30;
			for (int i = 0; i < 3; i = i + 1) {
				print(itos(xs[i]));
			}
			while (in(ages, "ann") and not in(ages, "bo")) {
				ages["bo"] = 40;
			}
		}
	`)
}

func TestRoundTripStringWithEscapes(t *testing.T) {
	assertRoundTrips(t, `
		void main() {
			string s = "line one\nline two\ttabbed \"quoted\" and a \\ backslash";
			print(s);
		}
	`)
}

func TestRoundTripElseIfChainAndParenthesizedExpr(t *testing.T) {
	assertRoundTrips(t, `
		void main() {
			int x = (1 + 2) * 3;
			if (x == 9) {
				print("nine");
			} elseif (x < 9) {
				print("small");
			} else {
				print("big");
			}
		}
	`)
}
