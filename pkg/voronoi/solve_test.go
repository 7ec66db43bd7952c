package voronoi

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/proteomap/pkg/geom"
)

func randomSeeder(border geom.Polygon, n int) Seeder {
	return func(rng *rand.Rand) ([]orb.Point, error) {
		return FindCentroids(nil, make([]string, n), border, rng, SeedOptions{}), nil
	}
}

func TestSolveTwoHalves(t *testing.T) {
	border := unitSquare()
	res, err := Solve(context.Background(), border, []float64{0.5, 0.5}, randomSeeder(border, 2), Options{Seed: 1})
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Less(t, res.Discrepancy, DefaultTolerance)
	require.InDelta(t, 0.5, res.Cells[0].Area(), 0.1)
	require.InDelta(t, 0.5, res.Cells[1].Area(), 0.1)
	require.InDelta(t, 1.0, totalArea(res.Cells), 1e-6)
}

func TestSolveSingleTarget(t *testing.T) {
	border := geom.DefaultBorder()
	res, err := Solve(context.Background(), border, []float64{3}, randomSeeder(border, 1), Options{})
	require.NoError(t, err)
	require.Len(t, res.Cells, 1)
	require.InDelta(t, border.Area(), res.Cells[0].Area(), 1e-9)
	require.Zero(t, res.Discrepancy)
}

func TestSolveUnnormalisedTargets(t *testing.T) {
	border := geom.DefaultBorder()
	targets := []float64{6, 3, 1}
	res, err := Solve(context.Background(), border, targets, randomSeeder(border, 3), Options{Seed: 5})
	require.NoError(t, err)
	require.True(t, res.Converged)

	area := border.Area()
	for i, w := range []float64{0.6, 0.3, 0.1} {
		require.InDelta(t, w, res.Cells[i].Area()/area, 0.2, "cell %d", i)
	}
	require.Equal(t, []float64{6, 3, 1}, targets, "input is not modified")
}

func TestSolveZeroTarget(t *testing.T) {
	border := unitSquare()
	res, err := Solve(context.Background(), border, []float64{0.5, 0.5, 0}, randomSeeder(border, 3), Options{Seed: 3})
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Discrepancy, 0.0)

	// A tolerance the loop cannot reach runs every step, shrinking the cell.
	tight := Options{Seed: 3, Tolerance: 1e-6, MaxAttempts: 1, MaxSteps: 200}
	res, err = Solve(context.Background(), border, []float64{0.5, 0.5, 0}, randomSeeder(border, 3), tight)
	require.NoError(t, err)
	require.False(t, res.Converged)
	require.Less(t, res.Cells[2].Area(), 0.01*border.Area())
	require.InDelta(t, 0.5, res.Cells[0].Area()/border.Area(), 0.1)
}

func TestSolveDeterministic(t *testing.T) {
	border := geom.DefaultBorder()
	targets := []float64{0.4, 0.3, 0.2, 0.1}
	opts := Options{Seed: 42}

	a, err := Solve(context.Background(), border, targets, randomSeeder(border, 4), opts)
	require.NoError(t, err)
	b, err := Solve(context.Background(), border, targets, randomSeeder(border, 4), opts)
	require.NoError(t, err)

	require.Equal(t, a.Discrepancy, b.Discrepancy)
	require.Equal(t, a.History, b.History)
	for i := range a.Cells {
		require.Equal(t, a.Cells[i].Vertices(), b.Cells[i].Vertices())
	}
}

func TestSolveHistoryNonIncreasing(t *testing.T) {
	border := geom.DefaultBorder()
	targets := []float64{0.3, 0.25, 0.2, 0.1, 0.08, 0.05, 0.02}
	// A tolerance no attempt can reach forces every attempt to run.
	opts := Options{Seed: 9, Tolerance: 1e-9, MaxAttempts: 4, MaxSteps: 10}

	res, err := Solve(context.Background(), border, targets, randomSeeder(border, len(targets)), opts)
	require.NoError(t, err)
	require.False(t, res.Converged)
	require.Equal(t, 4, res.Attempts)
	require.Len(t, res.History, 4)
	for i := 1; i < len(res.History); i++ {
		require.LessOrEqual(t, res.History[i], res.History[i-1])
	}
	require.Equal(t, res.History[len(res.History)-1], res.Discrepancy)
	require.GreaterOrEqual(t, res.Discrepancy, 0.0)
}

func TestSolveUnsolved(t *testing.T) {
	boom := errors.New("no seeds")
	seeder := func(*rand.Rand) ([]orb.Point, error) { return nil, boom }

	_, err := Solve(context.Background(), unitSquare(), []float64{1, 1}, seeder, Options{MaxAttempts: 3})
	require.ErrorIs(t, err, ErrUnsolved)
	require.ErrorIs(t, err, boom)
}

func TestSolveSeederCountMismatch(t *testing.T) {
	border := unitSquare()
	_, err := Solve(context.Background(), border, []float64{1, 1, 1}, randomSeeder(border, 2), Options{MaxAttempts: 1})
	require.ErrorIs(t, err, ErrUnsolved)
}

func TestSolveInvalidInput(t *testing.T) {
	border := unitSquare()
	seeder := randomSeeder(border, 2)

	_, err := Solve(context.Background(), border, nil, seeder, Options{})
	require.Error(t, err)
	_, err = Solve(context.Background(), border, []float64{1, -1}, seeder, Options{})
	require.Error(t, err)
	_, err = Solve(context.Background(), border, []float64{0, 0}, seeder, Options{})
	require.Error(t, err)
	_, err = Solve(context.Background(), geom.Polygon{}, []float64{1, 1}, seeder, Options{})
	require.ErrorIs(t, err, ErrDegenerate)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	border := unitSquare()
	_, err := Solve(ctx, border, []float64{1, 1}, randomSeeder(border, 2), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	require.Equal(t, DefaultTolerance, o.Tolerance)
	require.Equal(t, DefaultMaxSteps, o.MaxSteps)
	require.Equal(t, DefaultMaxAttempts, o.MaxAttempts)
	require.Equal(t, DefaultStepLimit, o.StepLimit)
	require.Equal(t, DefaultEpsilon, o.Epsilon)
	require.NotNil(t, o.Logger)

	o = Options{StepLimit: 1.5}
	o.SetDefaults()
	require.Equal(t, DefaultStepLimit, o.StepLimit)
}
