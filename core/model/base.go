package model

import "sync"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全てのモデルの基底となる構造体
// 学習状態と学習時のサンプル数を保持する
type BaseEstimator struct {
	mu       sync.RWMutex
	state    EstimatorState
	nSamples int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定し、学習サンプル数を記録する
func (e *BaseEstimator) SetFitted(nSamples int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Fitted
	e.nSamples = nSamples
}

// NSamples は学習時に使用したサンプル数を返す
func (e *BaseEstimator) NSamples() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nSamples
}
