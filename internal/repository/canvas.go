package repository

import (
	"context"

	"kis-canvas/internal/domain"
)

// CanvasRepository 定义了与画布服务交互的操作，通常由 HTTP API 实现。
type CanvasRepository interface {
	// GetColors 获取可选颜色列表（有序）。
	GetColors(ctx context.Context) ([]string, error)

	// GetCanvas 获取初始画布状态。
	GetCanvas(ctx context.Context) (*domain.CanvasState, error)

	// PlacePixel 提交一次像素放置。
	// 服务端拒绝时返回 *RejectionError（errors.Is(err, ErrPlacementRejected) 为 true）。
	PlacePixel(ctx context.Context, x, y int, color string) (*domain.PlacementReceipt, error)

	// GetCooldown 查询当前会话的冷却状态。
	GetCooldown(ctx context.Context) (*domain.CooldownStatus, error)
}

// PushPublisher 是推送通道的出站部分。
type PushPublisher interface {
	// Publish 发送本地放置的像素。未连接时返回 false，消息被丢弃。
	Publish(update domain.PixelUpdate) bool
}
