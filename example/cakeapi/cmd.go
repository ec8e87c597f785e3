package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/donutnomad/gormskipper/example/cakeapi/api"
	"github.com/donutnomad/gormskipper/example/cakeapi/config"
	"github.com/donutnomad/gormskipper/example/cakeapi/db"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type appKey struct{}

// app 由 PersistentPreRunE 创建, 供子命令使用
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cakeapi",
		Short:         "REST service for cakes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			log, err := cfg.Log.Build()
			if err != nil {
				return err
			}
			gdb, err := db.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{cfg: cfg, log: log, db: gdb}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
				_ = a.log.Sync()
			}
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := db.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			a.log.Info("migrated", zap.String("database", a.cfg.Database.Name))
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var seeOther bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			var opts []api.Option
			if seeOther {
				opts = append(opts, api.WithDuplicatePolicy(api.SeeOtherWhenIdentical))
			}
			return serve(cmd.Context(), a, api.New(a.db, a.log, opts...).Router())
		},
	}
	cmd.Flags().BoolVar(&seeOther, "see-other-on-duplicate", false,
		"answer 303 to a repeated identical create and 409 to a colliding one, instead of 500")
	return cmd
}

// serve 运行直到 ctx 结束, 之后优雅关闭
func serve(ctx context.Context, a *app, handler http.Handler) error {
	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    a.cfg.API.Addr(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		a.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server error")
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
