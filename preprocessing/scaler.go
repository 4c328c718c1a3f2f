// Package preprocessing は単変量データの標準化を提供する。
package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// minScale 未満の標準偏差は 1 として扱う（定数入力でのゼロ除算を避ける）
const minScale = 1e-8

// StandardScaler は値を平均0、標準偏差1に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は学習データの平均値
	Mean float64

	// Scale は学習データの母標準偏差
	Scale float64

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	z, err := scaler.FitTransform(x)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(x []float64) error {
	if len(x) == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckNumericalStability("StandardScaler.Fit", x, 0); err != nil {
		return err
	}

	mean, std := stat.PopMeanStdDev(x, nil)
	s.Mean, s.Scale = 0, 1
	if s.WithMean {
		s.Mean = mean
	}
	if s.WithStd && std >= minScale {
		s.Scale = std
	}

	s.SetFitted(len(x))
	return nil
}

// Transform は学習済みの統計量で値を標準化する
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean) / s.Scale
	}
	return out, nil
}

// FitTransform は Fit と Transform を続けて行う
func (s *StandardScaler) FitTransform(x []float64) ([]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// InverseTransform は標準化された値を元のスケールに戻す
func (s *StandardScaler) InverseTransform(z []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = v*s.Scale + s.Mean
	}
	return out, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(mean=%.6g, scale=%.6g)", s.Mean, s.Scale)
}
