package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// SignalPlanServiceName 信号配时服务名
	SignalPlanServiceName = "signalplan.v1.SignalPlanService"
	// OptimizeProcedure 绿信比优化过程
	OptimizeProcedure = "/" + SignalPlanServiceName + "/Optimize"
)

// NewSignalPlanServiceHandler 创建connect服务处理器
// 返回：路由前缀与处理器；请求与响应都是google.protobuf.Struct，字段与HTTP接口的JSON一致
func (ctx *Context) NewSignalPlanServiceHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(OptimizeProcedure, connect.NewUnaryHandler(OptimizeProcedure, ctx.optimize, opts...))
	return "/" + SignalPlanServiceName + "/", mux
}

func (ctx *Context) optimize(
	c context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var req Request
	if err := fromStruct(in.Msg, &req); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	res, err := ctx.Handle(c, req)
	if err != nil {
		return nil, connect.NewError(Code(err), err)
	}
	out := &structpb.Struct{}
	if err := toStruct(res, out); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// Code 错误对应的connect状态码
func Code(err error) connect.Code {
	switch {
	case errors.Is(err, entity.ErrConfiguration):
		return connect.CodeInvalidArgument
	case errors.Is(err, entity.ErrInfeasible):
		return connect.CodeFailedPrecondition
	case errors.Is(err, entity.ErrSolverTimeout):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrConfiguration, err)
	}
	return nil
}

func toStruct(v any, s *structpb.Struct) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return protojson.Unmarshal(data, s)
}
