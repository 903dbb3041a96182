//go:build wireinject
// +build wireinject

package di

import (
	"log/slog"

	wire "github.com/google/wire"
	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/adapter/source"
	"github.com/mmcdole/vinilo/internal/search"
	"github.com/mmcdole/vinilo/internal/tui"
)

func InitApp(cfg *adapter.Config, logger *slog.Logger) (*App, func(), error) {

	wire.Build(
		ProvideDB,
		ProvideMusicianTable,
		ProvideCollectorTable,
		ProvideRecorder,
		source.NewClientFromConfig,

		ProvideMusicianSync,
		ProvideCollectorSync,
		ProvideMusicianPager,
		ProvideCollectorPager,
		ProvideEnricher,
		ProvideAlbums,
		ProvideComments,
		search.NewIndex,
		ProvideLauncher,
		wire.Bind(new(tui.ImageOpener), new(*adapter.Launcher)),

		wire.Struct(new(tui.Services), "*"),
		NewApp,
	)

	return nil, nil, nil
}
