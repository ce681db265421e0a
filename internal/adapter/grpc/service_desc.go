package grpc

// proto 生成コードが未生成のため、gRPC サービス記述子を手動定義する。
// buf generate 後にこのファイルは生成コードの RegisterConfigSyncServiceServer に置き換える。

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec は JSON ベースの gRPC コーデック。
type JSONCodec struct{}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return "json" }

// ConfigSyncServiceServer は gRPC ConfigSyncService のサーバーインターフェース。
type ConfigSyncServiceServer interface {
	GetConfig(ctx context.Context, req *GetConfigRequest) (*GetConfigResponse, error)
	UpdateConfig(ctx context.Context, req *UpdateConfigRequest) (*UpdateConfigResponse, error)
	DeleteConfig(ctx context.Context, req *DeleteConfigRequest) (*DeleteConfigResponse, error)
	BulkUpdate(ctx context.Context, req *BulkUpdateRequest) (*BulkUpdateResponse, error)
	GetHistory(ctx context.Context, req *GetHistoryRequest) (*GetHistoryResponse, error)
}

// RegisterConfigSyncServiceServer は ConfigSyncGRPCService を gRPC サーバーに登録する。
func RegisterConfigSyncServiceServer(s *grpc.Server, svc *ConfigSyncGRPCService) {
	s.RegisterService(&_ConfigSyncService_serviceDesc, svc)
}

var _ConfigSyncService_serviceDesc = grpc.ServiceDesc{
	ServiceName: "k1s0.system.configsync.v1.ConfigSyncService",
	HandlerType: (*ConfigSyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetConfig",
			Handler:    _ConfigSyncService_GetConfig_Handler,
		},
		{
			MethodName: "UpdateConfig",
			Handler:    _ConfigSyncService_UpdateConfig_Handler,
		},
		{
			MethodName: "DeleteConfig",
			Handler:    _ConfigSyncService_DeleteConfig_Handler,
		},
		{
			MethodName: "BulkUpdate",
			Handler:    _ConfigSyncService_BulkUpdate_Handler,
		},
		{
			MethodName: "GetHistory",
			Handler:    _ConfigSyncService_GetHistory_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "v1/configsync.proto",
}

// --- ConfigSyncService Handlers ---

func _ConfigSyncService_GetConfig_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetConfigRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfigSyncServiceServer).GetConfig(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/k1s0.system.configsync.v1.ConfigSyncService/GetConfig",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConfigSyncServiceServer).GetConfig(ctx, req.(*GetConfigRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ConfigSyncService_UpdateConfig_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(UpdateConfigRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfigSyncServiceServer).UpdateConfig(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/k1s0.system.configsync.v1.ConfigSyncService/UpdateConfig",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConfigSyncServiceServer).UpdateConfig(ctx, req.(*UpdateConfigRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ConfigSyncService_DeleteConfig_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(DeleteConfigRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfigSyncServiceServer).DeleteConfig(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/k1s0.system.configsync.v1.ConfigSyncService/DeleteConfig",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConfigSyncServiceServer).DeleteConfig(ctx, req.(*DeleteConfigRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ConfigSyncService_BulkUpdate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(BulkUpdateRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfigSyncServiceServer).BulkUpdate(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/k1s0.system.configsync.v1.ConfigSyncService/BulkUpdate",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConfigSyncServiceServer).BulkUpdate(ctx, req.(*BulkUpdateRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ConfigSyncService_GetHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetHistoryRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfigSyncServiceServer).GetHistory(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/k1s0.system.configsync.v1.ConfigSyncService/GetHistory",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConfigSyncServiceServer).GetHistory(ctx, req.(*GetHistoryRequest))
	}
	return interceptor(ctx, req, info, handler)
}
