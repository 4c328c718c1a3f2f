package linear

import (
	"math/rand/v2"
	"testing"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows int) ([]float64, []float64) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	x := make([]float64, rows)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		x[i] = rng.Float64()*2.0 - 1.0
		y[i] = 1.0 + 0.5*x[i] + (rng.Float64()-0.5)*0.1
	}
	return x, y
}

// BenchmarkLinearRegressionFit はFitメソッドのベンチマークを実行する
func BenchmarkLinearRegressionFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
	}{
		{"Small_100", 100},
		{"Medium_1000", 1000}, // 並列処理の閾値
		{"Large_10000", 10000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			x, y := createBenchmarkData(size.rows)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegression()
				if err := lr.Fit(x, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
