package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGTERM, syscall.SIGINT)

	return gracefulShutdown
}

// ListenForShutdown blocks until SIGTERM/SIGINT, runs the handler, then waits
// timeToWait before closing done so in-flight work can drain.
func ListenForShutdown(
	signalChan chan os.Signal,
	done chan bool,
	signalHandler func(),
	timeToWait time.Duration,
	l *zap.Logger,
) {
	sig := <-signalChan
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		l.Sugar().Infof("caught signal %v", sig)

		signalHandler()

		l.Sugar().Infof("Waiting %v seconds to exit...", timeToWait.Seconds())
		time.Sleep(timeToWait)

		l.Sugar().Infof("Exiting")
		close(done)
	}
}
