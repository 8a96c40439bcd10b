package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/maddsua/dnsping/dnsmsg"
	"github.com/maddsua/dnsping/env"
	"github.com/maddsua/dnsping/ping"
	"github.com/maddsua/dnsping/socks"
	"github.com/maddsua/dnsping/transport"
)

type CliFlags struct {
	Debug   *bool
	CfgFile *string
	LogFmt  *string

	Host      *string
	Port      *int
	Iterate   *bool
	Count     *int
	Interval  *int
	Timeout   *int
	Proxy     *string
	ProxyUser *string
	ProxyPass *string
}

func main() {

	godotenv.Load()

	cli := CliFlags{
		Debug:   flag.Bool("debug", false, "Show debug logging"),
		CfgFile: flag.String("config", "", "Set config file path"),
		LogFmt:  flag.String("logfmt", "", "Log format: json|null"),

		Host:      flag.String("host", "", "Host name to query (default www.google.com)"),
		Port:      flag.Int("port", 0, "Server port (default 53)"),
		Iterate:   flag.Bool("iterate", false, "Do query iteratively"),
		Count:     flag.Int("count", 0, "Number of queries to send (default 0 = unlimited)"),
		Interval:  flag.Int("interval", 0, "Wait between sending each packet, ms (default 1000)"),
		Timeout:   flag.Int("timeout", 0, "Timeout to wait for each response, ms (default 1000; 0 = no timeout)"),
		Proxy:     flag.String("socks-proxy", "", "SOCKS proxy address (addr or addr:port)"),
		ProxyUser: flag.String("socks-user", "", "SOCKS proxy username"),
		ProxyPass: flag.String("socks-password", "", "SOCKS proxy password"),
	}
	flag.Parse()

	if env.Get("LOG_FMT").Is("json") || *cli.LogFmt == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	if *cli.Debug || env.Get("LOG_LEVEL").Is("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Enabled")
	}

	cfg := defaultConfig()

	if *cli.CfgFile != "" {

		slog.Debug("Loading config file",
			slog.String("from", *cli.CfgFile))

		if err := loadConfigFile(*cli.CfgFile, &cfg); err != nil {
			slog.Error("Failed to load config file",
				slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	applyCliFlags(&cfg, cli)

	if flag.NArg() > 0 {
		cfg.Server = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid options",
			slog.String("err", err.Error()))
		os.Exit(1)
	}

	//	the server name is resolved exactly once per run
	server, err := net.ResolveIPAddr("ip", cfg.Server)
	if err != nil {
		slog.Error("Failed to resolve server address",
			slog.String("server", cfg.Server),
			slog.String("err", err.Error()))
		os.Exit(1)
	}

	serverAddr := net.JoinHostPort(server.IP.String(), strconv.Itoa(cfg.Port))
	qtype := dnsmsg.QueryTypeFor(server.IP)

	//	build a throwaway query up front: it validates the host name
	//	before any sockets are opened and sizes the banner
	query, err := dnsmsg.BuildQuery(0, cfg.Host, qtype, cfg.Iterate)
	if err != nil {
		slog.Error("Invalid query host name",
			slog.String("host", cfg.Host),
			slog.String("err", err.Error()))
		os.Exit(1)
	}

	var proxy *transport.Proxy
	if cfg.Proxy != nil {

		proxy = &transport.Proxy{
			Addr: cfg.Proxy.Addr,
			Port: cfg.Proxy.Port,
		}

		if cfg.Proxy.Username != "" {
			proxy.Creds = &socks.Credentials{
				Username: cfg.Proxy.Username,
				Password: cfg.Proxy.Password,
			}
		}

		slog.Debug("Using SOCKS proxy",
			slog.String("addr", proxy.String()),
			slog.Bool("auth", proxy.Creds != nil))
	}

	conn, err := transport.Dial(server.IP, cfg.Port, proxy)
	if err != nil {
		slog.Error("Failed to open transport",
			slog.String("server", serverAddr),
			slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("PING %s for %s %d bytes of data.\n", serverAddr, cfg.Host, len(query))

	pinger := ping.Pinger{
		Conn:      conn,
		Host:      cfg.Host,
		QueryType: qtype,
		Iterate:   cfg.Iterate,
		Count:     cfg.Count,
		Interval:  time.Duration(cfg.IntervalMs) * time.Millisecond,
		Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		Report: func(probe ping.Probe) {
			switch probe.Outcome {
			case ping.OutcomeSuccess:
				fmt.Printf("%d bytes from %s: id=%d time=%.2f ms\n",
					probe.Size, serverAddr, probe.Seq, toMs(probe.RTT))
			case ping.OutcomeTimeout:
				fmt.Printf("timeout from %s: id=%d\n", serverAddr, probe.Seq)
			case ping.OutcomeMalformed:
				fmt.Printf("malformed reply from %s: id=%d\n", serverAddr, probe.Seq)
			}
		},
	}

	summary, runErr := pinger.Run(ctx)

	fmt.Printf("\n--- %s ping statistics ---\n", serverAddr)
	fmt.Printf("%d packets transmitted, %d received, %.2f%% packet loss\n",
		summary.Sent, summary.Received, summary.Loss)

	if summary.Received > 0 {
		fmt.Printf("rtt min/avg/max/stddev = %.3f/%.3f/%.3f/%.3f ms\n",
			toMs(summary.RttMin), toMs(summary.RttMean), toMs(summary.RttMax), toMs(summary.RttStdDev))
	}

	if runErr != nil {
		slog.Error("Run aborted",
			slog.String("err", runErr.Error()))
		os.Exit(1)
	}
}

func toMs(val time.Duration) float64 {
	return float64(val.Microseconds()) / 1000
}

// cli flags beat config file values, but only the ones actually set
func applyCliFlags(cfg *Config, cli CliFlags) {

	var proxyConfig = func() *ProxyConfig {
		if cfg.Proxy == nil {
			cfg.Proxy = &ProxyConfig{}
		}
		return cfg.Proxy
	}

	flag.Visit(func(item *flag.Flag) {
		switch item.Name {
		case "host":
			cfg.Host = *cli.Host
		case "port":
			cfg.Port = *cli.Port
		case "iterate":
			cfg.Iterate = *cli.Iterate
		case "count":
			cfg.Count = *cli.Count
		case "interval":
			cfg.IntervalMs = *cli.Interval
		case "timeout":
			cfg.TimeoutMs = *cli.Timeout
		case "socks-proxy":

			proxy := proxyConfig()

			if host, port, err := net.SplitHostPort(*cli.Proxy); err == nil {
				proxy.Addr = host
				proxy.Port, _ = strconv.Atoi(port)
			} else {
				proxy.Addr = *cli.Proxy
			}

		case "socks-user":
			proxyConfig().Username = *cli.ProxyUser
		case "socks-password":
			proxyConfig().Password = *cli.ProxyPass
		}
	})

	//	credentials can also come from the environment
	if cfg.Proxy != nil {
		if cfg.Proxy.Username == "" {
			cfg.Proxy.Username = env.Get("DNSPING_SOCKS_USER").String()
		}
		if cfg.Proxy.Password == "" {
			cfg.Proxy.Password = env.Get("DNSPING_SOCKS_PASSWORD").String()
		}
	}
}
