package model

import "github.com/YuminosukeSato/unifit/pkg/errors"

// Fitter は1次元の説明変数で学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データ (x, y) で学習させる
	Fit(x, y []float64) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力 x に対する予測値を返す
	Predict(x []float64) ([]float64, error)
}

// Regressor は単変量回帰モデルの基本インターフェース
type Regressor interface {
	Fitter
	Predictor
}

// FitPredict は model を (xTrain, yTrain) で学習し、xEval での予測値を返す
func FitPredict(m Regressor, xTrain, yTrain, xEval []float64) ([]float64, error) {
	if err := m.Fit(xTrain, yTrain); err != nil {
		return nil, err
	}
	return m.Predict(xEval)
}

// CheckXY は学習データの基本的な検証を行う
func CheckXY(op string, x, y []float64) error {
	if len(x) == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(y) != len(x) {
		return errors.NewDimensionError(op, len(x), len(y), 0)
	}
	return nil
}
