package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/monitor"
	"github.com/sells-group/geofencer/internal/regions"
	"github.com/sells-group/geofencer/internal/replay"
	"github.com/sells-group/geofencer/internal/store"
)

var (
	trackFile       string
	trackRegions    string
	trackIntervalMS int
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Replay a recorded position track against the stored regions",
	Long:  "Replays a CSV position track through a software-mode monitoring coordinator. Enter and exit events are logged and persisted to the event store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		track, err := replay.LoadTrack(trackFile)
		if err != nil {
			return err
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if trackRegions != "" {
			loaded, err := regions.Load(trackRegions)
			if err != nil {
				return eris.Wrap(err, "load regions")
			}
			for _, r := range loaded {
				if err := s.SaveRegion(ctx, r); err != nil {
					return eris.Wrapf(err, "save region %s", r.ID)
				}
			}
		}

		stored, err := s.ListRegions(ctx)
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			return eris.New("no regions to monitor; import some with 'geofencer regions import'")
		}

		monCfg, err := cfg.Monitor.ToMonitor()
		if err != nil {
			return err
		}
		// Replay has no native region monitor, so transitions are always
		// evaluated in software.
		monCfg.Mode = monitor.ModeSoftware

		interval := trackIntervalMS
		if interval == 0 {
			interval = cfg.Replay.IntervalMS
		}
		source := replay.NewSource(track, time.Duration(interval)*time.Millisecond)

		sink := monitor.MultiSink{
			monitor.LogSink{},
			store.NewEventRecorder(s),
		}
		coord, err := monitor.New(monCfg, source, nil, sink)
		if err != nil {
			return err
		}
		source.Bind(coord)

		if err := coord.AddRegions(stored); err != nil {
			return err
		}
		if err := coord.Start(); err != nil {
			return err
		}
		source.GrantAuthorization(monitor.AuthorizationAlways)

		zap.L().Info("replay started",
			zap.Int("positions", len(track)),
			zap.Int("regions", len(stored)),
			zap.Int("interval_ms", interval),
		)

		select {
		case <-source.Done():
			zap.L().Info("replay complete")
		case <-ctx.Done():
			zap.L().Info("replay interrupted")
		}

		coord.Stop()
		return nil
	},
}

func init() {
	trackCmd.Flags().StringVar(&trackFile, "track", "", "path to CSV track file (required)")
	trackCmd.Flags().StringVar(&trackRegions, "regions", "", "region file to import before replaying")
	trackCmd.Flags().IntVar(&trackIntervalMS, "interval-ms", 0, "replay interval between fixes (default from config)")
	_ = trackCmd.MarkFlagRequired("track")
	rootCmd.AddCommand(trackCmd)
}
