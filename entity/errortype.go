package entity

import "errors"

// 错误分类，调用方通过errors.Is判断
// 所有错误都源于确定性的输入条件，不做自动重试
var (
	// 配置错误：路口不存在、输入数据格式错误、参数非法，在求解前终止
	ErrConfiguration = errors.New("configuration error")
	// 不可行：给定周期长度与相位上下界无可行解
	ErrInfeasible = errors.New("infeasible allocation")
	// 求解器内部数值错误
	ErrSolver = errors.New("solver error")
	// 求解超时
	ErrSolverTimeout = errors.New("solver timeout")
)
