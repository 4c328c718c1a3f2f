// Package metrics は回帰モデルの評価指標を提供する。
//
// 全ての指標は同じ長さの真値ベクトルと予測値ベクトルを受け取る。
// 真値の分散が0のためR²が定義できない場合はNaNを返し、
// errors.Warn を通してUndefinedMetricWarningを発行する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scores は1つの予測結果に対する4つの評価指標をまとめたもの
type Scores struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// checkPair は真値と予測値の長さを検証する
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// 真値の全変動が0の場合はNaNを返し、UndefinedMetricWarningを発行する。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := stat.Mean(mat.Col(nil, 0, yTrue), nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		yp := yPred.AtVec(i)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yp) * (yt - yp)
	}

	if tss == 0 {
		result := math.NaN()
		errors.Warn(errors.NewUndefinedMetricWarning("r2_score", "zero variance in y_true", result))
		return result, nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// Regression は4つの回帰指標をまとめて計算する
func Regression(yTrue, yPred []float64) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, errors.NewValueError("Regression", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return Scores{}, errors.NewDimensionError("Regression", len(yTrue), len(yPred), 0)
	}

	t := mat.NewVecDense(len(yTrue), yTrue)
	p := mat.NewVecDense(len(yPred), yPred)

	mse, err := MSE(t, p)
	if err != nil {
		return Scores{}, err
	}
	mae, err := MAE(t, p)
	if err != nil {
		return Scores{}, err
	}
	r2, err := R2Score(t, p)
	if err != nil {
		return Scores{}, err
	}

	return Scores{MSE: mse, RMSE: math.Sqrt(mse), MAE: mae, R2: r2}, nil
}

// MeanScores は複数のScoresを指標ごとに単純平均する。
// NaNを含む指標の平均はNaNになる。
func MeanScores(scores []Scores) Scores {
	if len(scores) == 0 {
		nan := math.NaN()
		return Scores{MSE: nan, RMSE: nan, MAE: nan, R2: nan}
	}
	var out Scores
	for _, s := range scores {
		out.MSE += s.MSE
		out.RMSE += s.RMSE
		out.MAE += s.MAE
		out.R2 += s.R2
	}
	k := float64(len(scores))
	out.MSE /= k
	out.RMSE /= k
	out.MAE /= k
	out.R2 /= k
	return out
}
