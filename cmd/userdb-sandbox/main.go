package main

import (
	"flag"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Ratio1/userdb_sdk_go/internal/devseed"
	"github.com/Ratio1/userdb_sdk_go/internal/logging"
	"github.com/Ratio1/userdb_sdk_go/internal/sandbox"
	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

func main() {
	addr := flag.String("addr", ":8788", "listen address")
	prefix := flag.String("prefix", "/rest/", "path prefix the collections live under")
	apiKey := flag.String("apikey", "", "API key clients must send (empty accepts any)")
	seed := flag.String("seed", "", "path to JSON seed for the mock collections")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	store := mock.New()
	if *seed != "" {
		docs, err := devseed.LoadSeed(*seed)
		if err != nil {
			logger.Fatal("load seed", zap.Error(err))
		}
		if err := store.Seed(docs); err != nil {
			logger.Fatal("apply seed", zap.Error(err))
		}
	}

	failCfg, err := sandbox.ParseFailConfig(*fail)
	if err != nil {
		logger.Fatal("parse fail flag", zap.Error(err))
	}

	server := &http.Server{
		Addr: *addr,
		Handler: sandbox.NewHandler(store, sandbox.Options{
			Prefix:  *prefix,
			APIKey:  *apiKey,
			Latency: *latency,
			Fail:    failCfg,
			Logger:  logger,
		}),
	}

	logger.Info("userdb-sandbox listening", zap.String("addr", *addr))
	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	key := *apiKey
	if key == "" {
		key = "sandbox"
	}
	basePath := "/"
	if p := strings.Trim(*prefix, "/"); p != "" {
		basePath = "/" + p + "/"
	}
	fmt.Println()
	fmt.Println("export USERDB_RUNTIME_MODE=http")
	fmt.Printf("export USERDB_BASE_URL=http://%s%s\n", host, basePath)
	fmt.Println("export USERDB_COLLECTION=userdata")
	fmt.Println("export USERDB_USER_ID_FIELD=userId")
	fmt.Println("export USERDB_USER_DATA_FIELD=userData")
	fmt.Printf("export USERDB_API_KEY=%s\n", key)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}
