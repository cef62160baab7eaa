package connect

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// Params Connector 依赖参数
type Params struct {
	fx.In

	Resolver   interfaces.Resolver
	Dialer     interfaces.Dialer
	Observer   Observer       `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 connect 的 Fx 模块
var Module = fx.Module("connect",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Connector
func NewFromParams(p Params) (*Connector, error) {
	cfg, err := ConfigFromUnified(p.UnifiedCfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, p.Resolver, p.Dialer, WithObserver(p.Observer)), nil
}
