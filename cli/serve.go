package cli

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/config"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/render"
	"go.viam.com/planararm/utils"
	"go.viam.com/planararm/web"
)

// server owns the arm, the frame loop and the web service built from one config, and applies
// config changes to them.
type server struct {
	logger logging.Logger
	svc    *web.Service

	mu   sync.Mutex
	cfg  *config.Config
	arm  arm.Arm
	loop *render.Loop
}

func newServer(ctx context.Context, cfg *config.Config, logger logging.Logger) (*server, error) {
	s := &server{logger: logger, cfg: cfg}
	a, err := arm.New(ctx, cfg.Arm.Model, cfg.Arm.Name, cfg.Arm.Attributes, logger.Sublogger(cfg.Arm.Name))
	if err != nil {
		return nil, err
	}
	s.arm = a
	s.svc = web.New(a, nil, nil, logger.Sublogger("web"))
	if err := s.refreshRenderer(ctx); err != nil {
		return nil, multierr.Combine(err, a.Close(ctx))
	}
	s.startLoopLocked()
	return s, nil
}

// startLoopLocked starts a frame loop for the current arm. s.mu must be held or s unshared.
func (s *server) startLoopLocked() {
	s.loop = render.NewLoop(render.LoopConfig{
		Arm:       s.arm,
		FrameRate: s.cfg.Render.FrameRate,
		Logger:    s.logger.Sublogger("render"),
	})
	s.svc.SetSegments(s.loop.Segments())
}

func (s *server) refreshRenderer(ctx context.Context) error {
	geometry, err := s.arm.Geometry(ctx)
	if err != nil {
		return err
	}
	renderer := render.NewImageRenderer(s.cfg.Render.Width, s.cfg.Render.Height, s.cfg.Render.Scale)
	renderer.LinkLength = geometry.SubChains[0].LinkLength
	s.svc.SetRenderer(renderer)
	return nil
}

// applyConfig brings the server in line with newCfg. On failure the previous arm keeps running.
func (s *server) applyConfig(ctx context.Context, newCfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	diff, err := config.DiffConfigs(s.cfg, newCfg)
	if err != nil {
		return err
	}
	if diff.Equal() {
		return nil
	}
	s.logger.Debugf("config changed:\n%s", diff.String())

	if !diff.NetworkEqual {
		s.logger.Warnw("bind address changes take effect on restart",
			"current", s.cfg.Network.BindAddress, "configured", newCfg.Network.BindAddress)
	}
	if !diff.LogFileEqual {
		s.logger.Warnw("log file changes take effect on restart",
			"current", s.cfg.LogFile.Path, "configured", newCfg.LogFile.Path)
	}
	if !diff.LoggingEqual {
		config.UpdateFileConfigDebug(newCfg.Debug)
		s.logger.SetLevel(newCfg.Level())
	}

	rebuild := diff.ArmRebuild
	if diff.ArmAttributesChanged {
		if reconfigurable, ok := s.arm.(arm.Reconfigurable); ok {
			if err := reconfigurable.Reconfigure(ctx, newCfg.Arm.Attributes); err != nil {
				return errors.Wrapf(err, "cannot reconfigure arm %q", newCfg.Arm.Name)
			}
		} else {
			rebuild = true
		}
	}

	restartLoop := rebuild || !diff.RenderEqual
	if rebuild {
		newArm, err := arm.New(ctx, newCfg.Arm.Model, newCfg.Arm.Name, newCfg.Arm.Attributes, s.logger.Sublogger(newCfg.Arm.Name))
		if err != nil {
			return errors.Wrapf(err, "cannot rebuild arm %q", newCfg.Arm.Name)
		}
		s.loop.Close()
		if err := s.arm.Close(ctx); err != nil {
			s.logger.Errorw("error closing replaced arm", "arm", s.cfg.Arm.Name, "error", err)
		}
		s.arm = newArm
		s.svc.SetArm(newArm)
	} else if restartLoop {
		s.loop.Close()
	}

	s.cfg = newCfg
	if restartLoop {
		s.startLoopLocked()
	}
	if err := s.refreshRenderer(ctx); err != nil {
		return err
	}
	s.logger.Infow("config applied", "arm", newCfg.Arm.Name, "model", newCfg.Arm.Model, "rebuilt", rebuild)
	return nil
}

func (s *server) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop.Close()
	return s.arm.Close(ctx)
}

func (a *app) serveAction(c *cli.Context) (err error) {
	ctx := c.Context
	config.InitLoggingSettings(a.logger, c.Bool(flagDebug))

	cfg := config.Default()
	configPath := c.Path(flagConfig)
	if configPath != "" {
		cfg, err = config.Read(ctx, configPath, a.logger)
		if err != nil {
			return err
		}
	}
	config.UpdateFileConfigDebug(cfg.Debug)
	if !c.Bool(flagDebug) {
		a.logger.SetLevel(cfg.Level())
	}
	if cfg.LogFile.Enabled() {
		fileAppender := logging.NewFileAppender(cfg.LogFile.Path, cfg.LogFile.MaxSizeMB, cfg.LogFile.MaxBackups)
		a.logger.AddAppender(fileAppender)
		defer func() {
			err = multierr.Combine(err, a.logger.Sync(), fileAppender.Close())
		}()
		a.logger.Infow("logging to file", "path", cfg.LogFile.Path)
	}

	s, err := newServer(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close(context.Background()))
	}()

	if configPath != "" {
		var watcher config.Watcher
		watcher, err = config.NewWatcher(ctx, configPath, cfg, a.logger.Sublogger("config"))
		if err != nil {
			return err
		}
		workers := utils.NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
			for {
				select {
				case <-ctx.Done():
					return
				case newCfg := <-watcher.Config():
					if err := s.applyConfig(ctx, newCfg); err != nil {
						a.logger.Errorw("error applying config", "path", configPath, "error", err)
					}
				}
			}
		})
		defer func() {
			workers.Stop()
			err = multierr.Combine(err, watcher.Close())
		}()
	}

	listener, err := net.Listen("tcp", cfg.Network.BindAddress)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %q", cfg.Network.BindAddress)
	}
	return s.svc.RunWeb(ctx, listener)
}
