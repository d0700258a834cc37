package client

import (
	"context"
	"fmt"

	rts "github.com/ory/keto/proto/ory/keto/relation_tuples/v1alpha2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// PermissionScoringAdmin 打分管理操作需要的权限码
const PermissionScoringAdmin = "scoring:admin"

// KetoClient Keto 客户端封装 (使用 gRPC API)。
// 打分服务只消费权限关系：检查走 read 端，授予/撤销走 write 端（运维工具用）。
type KetoClient struct {
	readConn    *grpc.ClientConn
	writeConn   *grpc.ClientConn
	checkClient rts.CheckServiceClient
	writeClient rts.WriteServiceClient
}

// NewKetoClient 创建 Keto 客户端
// readAddr: Keto Read gRPC 地址 (例如: "localhost:4466")
// writeAddr: Keto Write gRPC 地址 (例如: "localhost:4467")
func NewKetoClient(readAddr, writeAddr string) (*KetoClient, error) {
	if readAddr == "" || writeAddr == "" {
		return nil, fmt.Errorf("keto addresses cannot be empty")
	}

	readConn, err := grpc.Dial(readAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to keto read service: %w", err)
	}

	writeConn, err := grpc.Dial(writeAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		readConn.Close()
		return nil, fmt.Errorf("failed to connect to keto write service: %w", err)
	}

	return &KetoClient{
		readConn:    readConn,
		writeConn:   writeConn,
		checkClient: rts.NewCheckServiceClient(readConn),
		writeClient: rts.NewWriteServiceClient(writeConn),
	}, nil
}

// Close 关闭客户端连接
func (k *KetoClient) Close() error {
	var errs []error
	if k.readConn != nil {
		if err := k.readConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close read connection: %w", err))
		}
	}
	if k.writeConn != nil {
		if err := k.writeConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close write connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing keto client: %v", errs)
	}
	return nil
}

// CheckPermission 检查权限三元组
func (k *KetoClient) CheckPermission(ctx context.Context, namespace, object, relation, subjectID string) (bool, error) {
	req := &rts.CheckRequest{
		Namespace: namespace,
		Object:    object,
		Relation:  relation,
		Subject: &rts.Subject{
			Ref: &rts.Subject_Id{
				Id: subjectID,
			},
		},
	}

	resp, err := k.checkClient.Check(ctx, req)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	return resp.Allowed, nil
}

// CheckUserPermission 检查用户是否拥有权限 (角色继承由 Keto 侧的关系推导)
func (k *KetoClient) CheckUserPermission(ctx context.Context, userID, permissionCode string) (bool, error) {
	return k.CheckPermission(ctx, "permissions", permissionCode, "granted", fmt.Sprintf("users:%s", userID))
}

// GrantScoringAdmin 直接授予用户打分管理权限（运维脚本用）
func (k *KetoClient) GrantScoringAdmin(ctx context.Context, userID string) error {
	return k.writeTuple(ctx, rts.RelationTupleDelta_ACTION_INSERT, userID)
}

// RevokeScoringAdmin 撤销用户的打分管理权限
func (k *KetoClient) RevokeScoringAdmin(ctx context.Context, userID string) error {
	return k.writeTuple(ctx, rts.RelationTupleDelta_ACTION_DELETE, userID)
}

func (k *KetoClient) writeTuple(ctx context.Context, action rts.RelationTupleDelta_Action, userID string) error {
	req := &rts.TransactRelationTuplesRequest{
		RelationTupleDeltas: []*rts.RelationTupleDelta{
			{
				Action: action,
				RelationTuple: &rts.RelationTuple{
					Namespace: "permissions",
					Object:    PermissionScoringAdmin,
					Relation:  "granted",
					Subject: &rts.Subject{
						Ref: &rts.Subject_Id{
							Id: fmt.Sprintf("users:%s", userID),
						},
					},
				},
			},
		},
	}

	if _, err := k.writeClient.TransactRelationTuples(ctx, req); err != nil {
		return fmt.Errorf("failed to write scoring admin tuple: %w", err)
	}
	return nil
}
