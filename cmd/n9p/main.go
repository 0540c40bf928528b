// n9p serves a 9P2000.L filesystem over TCP, backed by either a real
// host directory or an Anthropic chat session.
//
// Usage:
//
//	n9p -backend hostfs -root /srv/export -addr :5640
//	ANTHROPIC_API_KEY=sk-... n9p -backend chat -addr :5640
//
// Mount with:
//
//	mount -t 9p -o trans=tcp,port=5640,version=9p2000.L 127.0.0.1 /mnt/n9p
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/NERVsystems/n9p/internal/chatbackend"
	"github.com/NERVsystems/n9p/internal/hostfs"
	"github.com/NERVsystems/n9p/internal/ninep"
)

// dialAddr parses a `proto!host!port` address of the form the 9P
// convention uses: tcp!host!port dials a TCP listen endpoint, and
// unix!path!suffix treats path as a socket file (the trailing suffix
// is kept only for syntactic symmetry with tcp and is otherwise
// ignored). A bare address with no "!" is accepted as a TCP address
// for compatibility with plain host:port/`:port` strings.
func dialAddr(addr string) (network, address string, err error) {
	parts := strings.Split(addr, "!")
	switch len(parts) {
	case 1:
		return "tcp", parts[0], nil
	case 3:
		switch parts[0] {
		case "tcp":
			return "tcp", parts[1] + ":" + parts[2], nil
		case "unix":
			return "unix", parts[1], nil
		default:
			return "", "", fmt.Errorf("unknown protocol %q: want tcp or unix", parts[0])
		}
	default:
		return "", "", fmt.Errorf("malformed address %q: want proto!host!port", addr)
	}
}

func main() {
	addr := flag.String("addr", ":5640", "address to listen on (proto!host!port, or a bare tcp address)")
	backendName := flag.String("backend", "hostfs", "backend to serve: hostfs or chat")
	root := flag.String("root", ".", "directory to export (hostfs backend only)")
	maxDepth := flag.Int("max-depth", 64, "maximum walk depth below root (hostfs backend only)")
	debug := flag.Bool("debug", false, "enable debug logging")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	flag.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	backend, err := newBackend(*backendName, *root, *maxDepth, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "n9p:", err)
		os.Exit(1)
	}

	network, address, err := dialAddr(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "n9p:", err)
		os.Exit(1)
	}
	listener, err := net.Listen(network, address)
	if err != nil {
		logger.WithError(err).Fatal("listen failed")
	}
	logger.WithFields(logrus.Fields{"addr": listener.Addr(), "backend": *backendName}).Info("n9p listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		listener.Close()
		if network == "unix" {
			os.Remove(address)
		}
	}()

	var metrics *ninep.Metrics
	if *metricsAddr != "" {
		metrics = ninep.NewMetrics()
		prometheus.MustRegister(metrics)
		go serveMetrics(*metricsAddr, logger)
	}

	if err := backend.serve(ctx, listener, logger, metrics); err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// servable abstracts over the two Aux types n9p's backends use
// (*hostfs.Fid, *chatbackend.Node) so main can pick one at startup
// without the generic Server[Aux] type leaking into flag parsing.
type servable interface {
	serve(ctx context.Context, ln net.Listener, logger logrus.FieldLogger, metrics *ninep.Metrics) error
}

type hostfsServable struct{ backend *hostfs.Backend }

func (h hostfsServable) serve(ctx context.Context, ln net.Listener, logger logrus.FieldLogger, metrics *ninep.Metrics) error {
	srv := ninep.NewServer[*hostfs.Fid](h.backend)
	srv.Logger = logger
	srv.Metrics = metrics
	return srv.Serve(ctx, ln)
}

type chatServable struct{ backend *chatbackend.Backend }

func (c chatServable) serve(ctx context.Context, ln net.Listener, logger logrus.FieldLogger, metrics *ninep.Metrics) error {
	srv := ninep.NewServer[*chatbackend.Node](c.backend)
	srv.Logger = logger
	srv.Metrics = metrics
	return srv.Serve(ctx, ln)
}

func newBackend(name, root string, maxDepth int, logger logrus.FieldLogger) (servable, error) {
	switch name {
	case "hostfs":
		return hostfsServable{backend: hostfs.NewBackend(root, maxDepth, logger)}, nil
	case "chat":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		client := chatbackend.NewClient(apiKey)
		return chatServable{backend: chatbackend.NewBackend(client, logger)}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q: want hostfs or chat", name)
	}
}

func serveMetrics(addr string, logger logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	logger.WithField("addr", addr).Info("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.WithError(err).Warn("metrics server stopped")
	}
}
