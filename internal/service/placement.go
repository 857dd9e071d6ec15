package service

import (
	"context"
	"errors"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/repository"

	"github.com/sirupsen/logrus"
)

type placementResult struct {
	cell    domain.Cell
	color   string
	receipt *domain.PlacementReceipt
	err     error
}

type cooldownResult struct {
	status *domain.CooldownStatus
	err    error
}

// loadInitialState 同步加载颜色和画布。失败只记录日志，保留空状态。
func (c *Controller) loadInitialState(ctx context.Context) {
	logCtx := c.log.WithField("operation", "loadInitialState")

	// 1. 颜色列表
	colorsCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	colors, err := c.repo.GetColors(colorsCtx)
	cancel()
	if err != nil {
		logCtx.WithError(err).Error("Failed to load colors")
	} else {
		c.palette.Colors = colors
		logCtx.WithField("count", len(colors)).Info("Colors loaded")
	}

	// 2. 画布状态
	canvasCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	state, err := c.repo.GetCanvas(canvasCtx)
	cancel()
	if err != nil {
		logCtx.WithError(err).Error("Failed to load canvas")
		return
	}
	if state == nil {
		return
	}
	if state.Pixels != nil {
		c.pixels = state.Pixels
	}

	// 3. 服务端给出的尺寸优先于配置，首次渲染之后不再变化
	if state.Width > 0 && state.Height > 0 {
		grid := domain.NewGrid(state.Width, state.Height)
		if grid != c.grid {
			logCtx.WithFields(logrus.Fields{
				"width":  grid.Width,
				"height": grid.Height,
			}).Info("Grid size taken from canvas service")
			c.grid = grid
			c.camera.FitToView(float64(c.viewportWidth), float64(c.viewportHeight), c.grid)
		}
	}
	logCtx.WithField("pixels", len(c.pixels)).Info("Canvas loaded")
}

// placePixel 异步提交放置请求，结果回到事件循环处理。
func (c *Controller) placePixel(cell domain.Cell, color string) {
	c.alert = ""
	c.spawn(func() {
		ctx, cancel := c.requestContext()
		defer cancel()
		receipt, err := c.repo.PlacePixel(ctx, cell.X, cell.Y, color)
		c.post(Message{Type: msgPlacement, Placement: &placementResult{
			cell:    cell,
			color:   color,
			receipt: receipt,
			err:     err,
		}})
	})
}

func (c *Controller) handlePlacementResult(res *placementResult) {
	if res == nil {
		return
	}
	logCtx := c.log.WithFields(logrus.Fields{
		"x":     res.cell.X,
		"y":     res.cell.Y,
		"color": res.color,
	})

	if res.err != nil {
		var rejection *repository.RejectionError
		if errors.As(res.err, &rejection) {
			// 服务端拒绝：提示用户并重新同步冷却状态
			c.alert = rejection.Detail
			logCtx.WithField("status", rejection.StatusCode).Warnf("Placement rejected: %s", rejection.Detail)
			c.checkCooldown()
			return
		}
		logCtx.WithError(res.err).Error("Failed to place pixel")
		return
	}

	c.pixels.Set(res.cell.X, res.cell.Y, res.color)
	c.renderFrame()

	if res.receipt != nil {
		c.cooldown.StartUntil(res.receipt.CooldownUntil)
	}
	logCtx.WithField("remaining_seconds", c.cooldown.Remaining()).Info("Pixel placed")

	if !c.pusher.Publish(domain.NewPixelUpdate(res.cell.X, res.cell.Y, res.color)) {
		logCtx.Debug("Push channel not connected, placement not broadcast")
	}
}

// checkCooldown 异步查询冷却状态。
func (c *Controller) checkCooldown() {
	c.spawn(func() {
		ctx, cancel := c.requestContext()
		defer cancel()
		status, err := c.repo.GetCooldown(ctx)
		c.post(Message{Type: msgCooldown, Cooldown: &cooldownResult{status: status, err: err}})
	})
}

func (c *Controller) handleCooldownResult(res *cooldownResult) {
	if res == nil {
		return
	}
	if res.err != nil {
		c.log.WithError(res.err).Warn("Failed to check cooldown")
		return
	}
	if res.status.CanPlace {
		c.cooldown.Stop()
		return
	}
	if c.cooldown.Start(res.status.RemainingSeconds) {
		c.log.WithField("remaining_seconds", res.status.RemainingSeconds).Info("Cooldown active")
	}
}

// applyRemoteUpdate 合并推送通道的更新。推送数据不做边界检查。
func (c *Controller) applyRemoteUpdate(update domain.PixelUpdate) {
	if !update.Valid() {
		return
	}
	cell := update.Cell()
	c.pixels.Set(cell.X, cell.Y, update.Color)
	c.renderFrame()
}
