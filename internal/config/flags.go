// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the client flags from args (without the program name).
//
// Flags:
//
//	-mode client mode: serve, import or push
//	-log log file path
//	-d sqlite database path
//	-persist-interval persistence timer period (e.g. "10s")
//	-persist-throttle minimal delay between persistence passes
//	-s server address (e.g. "https://host:8080")
//	-request-timeout remote call timeout (e.g. "30s")
//	-token bearer token
//	-watch-capacity watch query registry capacity (-1 unbounded)
//	-page-size import page size
//	-max-progression import progress maximum
//	-feature feature name recorded on import
//	-probe-interval network probe period
//	-a local API address in format [host]:[port]
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	var apiAddress NetAddress
	var (
		mode, logFile, dsn, serverAddress, token, feature, jsonConfigPath string
		persistInterval, persistThrottle, requestTimeout, probeInterval   time.Duration
		watchCapacity, pageSize, maxProgression                           int
	)

	fs := flag.NewFlagSet("fieldsync", flag.ContinueOnError)
	fs.StringVar(&mode, "mode", "", "Client mode: serve, import or push")
	fs.StringVar(&logFile, "log", "", "Log file path")
	fs.StringVar(&dsn, "d", "", "Sqlite database path")
	fs.DurationVar(&persistInterval, "persist-interval", 0, "Persistence timer period (e.g., 10s)")
	fs.DurationVar(&persistThrottle, "persist-throttle", 0, "Minimal delay between persistence passes")
	fs.StringVar(&serverAddress, "s", "", "Server address")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.IntVar(&watchCapacity, "watch-capacity", 0, "Watch query registry capacity, -1 for unbounded")
	fs.IntVar(&pageSize, "page-size", 0, "Import page size")
	fs.IntVar(&maxProgression, "max-progression", 0, "Import progress maximum")
	fs.StringVar(&feature, "feature", "", "Feature name recorded on import")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Network probe period")
	fs.Var(&apiAddress, "a", "Local API address host:port")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{Mode: mode, LogFile: logFile},
		Storage: Storage{
			DB:              DB{DSN: dsn},
			PersistInterval: persistInterval,
			PersistThrottle: persistThrottle,
		},
		Adapter: Adapter{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
			Token:          token,
		},
		Cache: Cache{WatchQueryCapacity: watchCapacity},
		Import: Import{
			PageSize:       pageSize,
			MaxProgression: maxProgression,
			Feature:        feature,
		},
		Workers:      Workers{NetworkProbeInterval: probeInterval},
		API:          API{HTTPAddress: apiAddress.String()},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither part is set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range and checks IP correctness unless host is
// "localhost".
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
