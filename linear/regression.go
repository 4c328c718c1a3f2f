// Package linear は単変量の最小二乗線形回帰を提供する。
package linear

import (
	"github.com/YuminosukeSato/unifit/core/linalg"
	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/core/parallel"
	"github.com/YuminosukeSato/unifit/metrics"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LinearRegression は切片付きの単変量線形回帰モデル y = Intercept + Coef * x
type LinearRegression struct {
	model.BaseEstimator

	Coef      float64 // 傾き
	Intercept float64 // 切片
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit はモデルを訓練データで学習させる。
// x を標準化した上で正規方程式 w = (X^T X)^(-1) X^T y を解き、係数を元の
// スケールに戻す。X^T X が特異な場合（全ての x が同じ値など）は特異値分解
// による最小ノルム解を用い、傾きは 0、切片は y の平均になる。
func (lr *LinearRegression) Fit(x, y []float64) error {
	if err := model.CheckXY("LinearRegression.Fit", x, y); err != nil {
		return err
	}
	n := len(x)

	scaler := preprocessing.NewStandardScalerDefault()
	z, err := scaler.FitTransform(x)
	if err != nil {
		return err
	}

	// X_with_intercept = [1, z]
	design := mat.NewDense(n, 2, nil)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			design.Set(i, 0, 1.0)
			design.Set(i, 1, z[i])
		}
	})
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	weights, err := solveNormal(design, yVec)
	if err != nil {
		weights, err = linalg.LstSq("LinearRegression.Fit", design, yVec)
		if err != nil {
			return err
		}
	}

	// y = a + b*(x-m)/s = (a - b*m/s) + (b/s)*x
	lr.Coef = weights.AtVec(1) / scaler.Scale
	lr.Intercept = weights.AtVec(0) - lr.Coef*scaler.Mean
	lr.SetFitted(n)

	return nil
}

// solveNormal は正規方程式を解く
func solveNormal(design *mat.Dense, y *mat.VecDense) (*mat.VecDense, error) {
	_, c := design.Dims()

	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), y)

	weights := mat.NewVecDense(c, nil)
	weights.MulVec(&xtxInv, &xty)
	return weights, nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(x []float64) ([]float64, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	// 予測: y = intercept + coef * x
	predictions := make([]float64, len(x))
	for i, xi := range x {
		predictions[i] = lr.Intercept + lr.Coef*xi
	}
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(x, y []float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(x)
	if err != nil {
		return 0, err
	}
	scores, err := metrics.Regression(y, yPred)
	if err != nil {
		return 0, err
	}
	return scores.R2, nil
}
