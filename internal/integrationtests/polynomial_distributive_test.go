package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/ops/poly"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/store"
	"github.com/vk/invariant/internal/testutil"
	"github.com/vk/invariant/internal/value"
)

// Verifies (p+q)*r == p*r + q*r both symbolically and at x=5, and that the
// multiply op dispatches exactly three times over a cold store.
func TestPolynomialDistributiveLaw(t *testing.T) {
	h := newHarness(t, store.NewMemory())

	two := func(a, b string) params.Map {
		return params.Map{"a": params.Ref{Dep: a}, "b": params.Ref{Dep: b}}
	}
	g := testutil.MustGraph(t,
		"p", testutil.MustOp(t, "poly:from_coefficients", params.Map{"coefficients": lit(intList(1, 2, 1))}),
		"q", testutil.MustOp(t, "poly:from_coefficients", params.Map{"coefficients": lit(intList(3, 0, -1))}),
		"r", testutil.MustOp(t, "poly:from_coefficients", params.Map{"coefficients": lit(intList(1, 1))}),

		"p_plus_q", testutil.MustOp(t, "poly:add", two("p", "q"), "p", "q"),
		"lhs", testutil.MustOp(t, "poly:multiply", two("p_plus_q", "r"), "p_plus_q", "r"),

		"p_times_r", testutil.MustOp(t, "poly:multiply", two("p", "r"), "p", "r"),
		"q_times_r", testutil.MustOp(t, "poly:multiply", two("q", "r"), "q", "r"),
		"rhs", testutil.MustOp(t, "poly:add", two("p_times_r", "q_times_r"), "p_times_r", "q_times_r"),

		"eval_lhs", testutil.MustOp(t, "poly:evaluate", params.Map{
			"poly": params.Ref{Dep: "lhs"}, "x": lit(value.NewInt(5)),
		}, "lhs"),
		"eval_rhs", testutil.MustOp(t, "poly:evaluate", params.Map{
			"poly": params.Ref{Dep: "rhs"}, "x": lit(value.NewInt(5)),
		}, "rhs"),
	)

	results := h.run(t, g, nil)

	lhs := results["lhs"].(value.Domain).A.(*poly.Polynomial)
	rhs := results["rhs"].(value.Domain).A.(*poly.Polynomial)
	assert.True(t, value.Equal(lhs.Coefficients(), rhs.Coefficients()),
		"distributive law over coefficients")

	require.True(t, value.Equal(results["eval_lhs"], results["eval_rhs"]))
	// (p+q)(5) = 4 + 2*5 = 14; r(5) = 6; product = 84.
	assert.True(t, value.Equal(value.NewInt(84), results["eval_lhs"]))

	assert.Equal(t, 3, h.counter.Count("poly:multiply"),
		"(p+q)*r, p*r, and q*r each multiply once")
}
