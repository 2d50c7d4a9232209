// Command api exposes the wallet authentication HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/oklog/run"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	wallet "github.com/idaralabs/Idara-Wallet"
	"github.com/idaralabs/Idara-Wallet/internal/authapi"
	"github.com/idaralabs/Idara-Wallet/internal/did"
	"github.com/idaralabs/Idara-Wallet/internal/kafka"
	"github.com/idaralabs/Idara-Wallet/internal/mail"
	"github.com/idaralabs/Idara-Wallet/internal/msgconsumer"
	"github.com/idaralabs/Idara-Wallet/internal/msgpublisher"
	"github.com/idaralabs/Idara-Wallet/internal/msgrepo"
	"github.com/idaralabs/Idara-Wallet/internal/otp"
	"github.com/idaralabs/Idara-Wallet/internal/pg"
	"github.com/idaralabs/Idara-Wallet/internal/ratelimit"
	"github.com/idaralabs/Idara-Wallet/internal/sessionstore"
	"github.com/idaralabs/Idara-Wallet/internal/token"
	"github.com/idaralabs/Idara-Wallet/internal/tokenapi"
	"github.com/idaralabs/Idara-Wallet/internal/twilio"
	"github.com/idaralabs/Idara-Wallet/internal/webauthn"
)

func main() {
	var err error

	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var configPath string
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	{
		fs.Bool("api.debug", false, "Enable debug logging")
		fs.String("api.http-addr", ":8080", "Address to listen on")
		fs.String("api.allowed-origins", "*", "Comma separated list of allowed origins")
		fs.String("pg.conn-string", "", "Postgres connection string")
		fs.String("redis.conn-string", "", "Redis connection string")
		fs.Int("otp.code-length", 6, "OTP code length")
		fs.Duration("otp.ttl", time.Minute*10, "OTP challenge expiry time")
		fs.Int("otp.max-attempts", 3, "Max verification attempts per challenge")
		fs.Duration("ratelimit.window", time.Hour, "OTP issuance rate limit window")
		fs.Int64("ratelimit.ceiling", 5, "Max OTP issuances per window")
		fs.Int("msgconsumer.workers", 4, "Total number of workers to process outgoing messages")
		fs.Duration("token.expires-in", time.Hour*24, "JWT token expiry time")
		fs.Duration("token.refresh-threshold", time.Hour, "Remaining validity required to skip refresh")
		fs.String("token.issuer", "idara-wallet", "JWT token issuer")
		fs.String("token.secret", "", "JWT token secret")
		fs.String("webauthn.display-name", "Idara Wallet", "Webauthn display name")
		fs.String("webauthn.domain", "idarawallet.local", "Public client domain")
		fs.String("webauthn.request-origin", "https://idarawallet.local", "Origin URL for client requests")
		fs.Duration("webauthn.session-ttl", time.Minute*10, "Webauthn ceremony session expiry time")
		fs.Duration("webauthn.purge-interval", time.Minute*15, "Interval to sweep expired ceremony sessions")
		fs.StringSlice("kafka.brokers", []string{}, "Kafka broker host:port")
		fs.String("twilio.account-sid", "", "Account SID from Twilio")
		fs.String("twilio.token", "", "Authentication token for Twilio API")
		fs.String("twilio.sms-sender", "", "Origin phone number for outgoing SMS")
		fs.String("mail.server-addr", "", "Outgoing mail server")
		fs.String("mail.from-addr", "", "Origin email address for outgoing email")
		fs.String("mail.auth.username", "", "Username for mailing service")
		fs.String("mail.auth.password", "", "Password for mailing service")
		fs.String("mail.auth.hostname", "", "Hostname for mailing service")

		fs.StringVar(&configPath, "config", "", "Path to the config file")
		err = fs.Parse(os.Args[1:])
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		if err != nil {
			logger.Log("message", "failed to parse cli flags", "error", err, "source", "cmd/api")
			os.Exit(1)
		}
	}

	if _, err = os.Stat(configPath); !os.IsNotExist(err) {
		viper.SetConfigFile(configPath)
		err = viper.ReadInConfig()
		if err != nil {
			logger.Log("message", "failed to load config file", "error", err, "source", "cmd/api")
			os.Exit(1)
		}
	}
	if err = viper.BindPFlags(fs); err != nil {
		logger.Log("message", "failed to load cli flags", "error", err, "source", "cmd/api")
		os.Exit(1)
	}

	if viper.GetBool("api.debug") {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	repoMngr := pg.NewClient(pg.WithLogger(logger))
	{
		if err = repoMngr.Open(viper.GetString("pg.conn-string")); err != nil {
			logger.Log("message", "postgres connection failed", "error", err, "source", "cmd/api")
			os.Exit(1)
		}
		defer func() {
			if err = repoMngr.Close(); err != nil {
				logger.Log(
					"message", "failed to close postgres connection",
					"error", err,
					"source", "cmd/api",
				)
			}
		}()
	}

	var redisDB *redis.Client
	{
		redisConf, err := redis.ParseURL(viper.GetString("redis.conn-string"))
		if err != nil {
			logger.Log("message", "invalid redis configuration", "error", err, "source", "cmd/api")
			os.Exit(1)
		}
		redisDB = redis.NewClient(redisConf)
		closeRedis := func() {
			if err = redisDB.Close(); err != nil {
				logger.Log(
					"message", "failed to close redis connection",
					"error", err,
					"source", "cmd/api",
				)
			}
		}

		if _, err = redisDB.Ping(context.Background()).Result(); err != nil {
			logger.Log("message", "redis connection failed", "error", err, "source", "cmd/api")
			closeRedis()
			os.Exit(1)
		}
		defer closeRedis()
	}

	var messageRepo wallet.MessageRepository
	{
		brokers := viper.GetStringSlice("kafka.brokers")
		if len(brokers) > 0 {
			messageRepo = kafka.NewMessageRepository(kafka.NewClient(brokers))
		} else {
			// No broker configured, deliveries are queued in process.
			messageRepo = msgrepo.NewService(msgrepo.WithLogger(logger))
		}
	}

	messagingSvc := msgpublisher.NewService(messageRepo, msgpublisher.WithLogger(logger))

	limiterSvc := ratelimit.NewService(
		ratelimit.WithLogger(logger),
		ratelimit.WithDB(redisDB),
		ratelimit.WithWindow(viper.GetDuration("ratelimit.window")),
		ratelimit.WithCeiling(viper.GetInt64("ratelimit.ceiling")),
	)

	otpSvc := otp.NewService(
		otp.WithLogger(logger),
		otp.WithCodeLength(viper.GetInt("otp.code-length")),
		otp.WithTTL(viper.GetDuration("otp.ttl")),
		otp.WithMaxAttempts(viper.GetInt("otp.max-attempts")),
		otp.WithLimiter(limiterSvc),
		otp.WithRepoManager(repoMngr),
		otp.WithMessaging(messagingSvc),
	)

	sessionRepo := sessionstore.NewStore(
		sessionstore.WithTTL(viper.GetDuration("webauthn.session-ttl")),
	)

	webauthnSvc, err := webauthn.NewService(
		webauthn.WithLogger(logger),
		webauthn.WithDisplayName(viper.GetString("webauthn.display-name")),
		webauthn.WithDomain(viper.GetString("webauthn.domain")),
		webauthn.WithRequestOrigin(viper.GetString("webauthn.request-origin")),
		webauthn.WithSessionRepository(sessionRepo),
		webauthn.WithRepoManager(repoMngr),
	)
	if err != nil {
		logger.Log("message", "failed to build webauthn service", "error", err, "source", "cmd/api")
		os.Exit(1)
	}

	tokenSvc := token.NewService(
		token.WithLogger(logger),
		token.WithTokenExpiry(viper.GetDuration("token.expires-in")),
		token.WithRefreshThreshold(viper.GetDuration("token.refresh-threshold")),
		token.WithIssuer(viper.GetString("token.issuer")),
		token.WithSecret(viper.GetString("token.secret")),
	)

	didSvc := did.NewService(did.WithLogger(logger))

	authAPI := authapi.NewService(
		authapi.WithLogger(logger),
		authapi.WithOTP(otpSvc),
		authapi.WithWebAuthn(webauthnSvc),
		authapi.WithTokenService(tokenSvc),
		authapi.WithRepoManager(repoMngr),
		authapi.WithDID(didSvc),
	)

	tokenAPI := tokenapi.NewService(
		tokenapi.WithLogger(logger),
		tokenapi.WithTokenService(tokenSvc),
	)

	router := mux.NewRouter()
	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authapi.SetupHTTPHandler(authAPI, router, tokenSvc, logger)
	tokenapi.SetupHTTPHandler(tokenAPI, router, tokenSvc, logger)

	server := http.Server{
		Addr: viper.GetString("api.http-addr"),
		Handler: handlers.CORS(
			handlers.AllowedOrigins(strings.Split(
				viper.GetString("api.allowed-origins"), ","),
			),
			handlers.AllowedHeaders([]string{
				"X-Requested-With",
				"Content-Type",
				"Authorization",
			}),
			handlers.AllowCredentials(),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS", "HEAD"}),
		)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var smsLib wallet.SMSer
	{
		accountSID := viper.GetString("twilio.account-sid")
		if accountSID != "" {
			smsLib = twilio.NewClient(twilio.WithDefaults(
				accountSID,
				viper.GetString("twilio.token"),
				viper.GetString("twilio.sms-sender"),
			))
		} else {
			// No provider configured, codes land in the log sink.
			smsLib = &logSMSer{logger: logger}
		}
	}

	var emailLib wallet.Emailer
	{
		serverAddr := viper.GetString("mail.server-addr")
		if serverAddr != "" {
			emailLib = mail.NewService(mail.WithDefaults(
				serverAddr,
				viper.GetString("mail.from-addr"),
				smtp.PlainAuth(
					"",
					viper.GetString("mail.auth.username"),
					viper.GetString("mail.auth.password"),
					viper.GetString("mail.auth.hostname"),
				),
			))
		} else {
			emailLib = &logEmailer{logger: logger}
		}
	}

	msgd := msgconsumer.NewService(
		messageRepo,
		smsLib,
		emailLib,
		msgconsumer.WithWorkers(viper.GetInt("msgconsumer.workers")),
		msgconsumer.WithLogger(logger),
	)

	var g run.Group
	{
		g.Add(func() error {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			return fmt.Errorf("signal received: %v", <-sig)
		}, func(err error) {
			logger.Log("message", "program was interrupted", "error", err, "source", "cmd/api")
			cancel()
		})
	}
	{
		g.Add(func() error {
			logger.Log(
				"message", "message daemon is starting to check messages",
				"source", "cmd/api",
			)
			return msgd.Run(ctx)
		}, func(err error) {
			logger.Log(
				"message", "message daemon was shut down",
				"error", err,
				"source", "cmd/api",
			)
		})
	}
	{
		ticker := time.NewTicker(viper.GetDuration("webauthn.purge-interval"))
		g.Add(func() error {
			for {
				select {
				case <-ticker.C:
					purged, err := sessionRepo.PurgeExpired(ctx)
					if err != nil {
						logger.Log(
							"message", "failed to purge ceremony sessions",
							"error", err,
							"source", "cmd/api",
						)
						continue
					}
					if purged > 0 {
						logger.Log(
							"message", "purged expired ceremony sessions",
							"count", purged,
							"source", "cmd/api",
						)
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}, func(err error) {
			ticker.Stop()
		})
	}
	{
		g.Add(func() error {
			logger.Log(
				"message", "API server is starting",
				"address", server.Addr,
				"source", "cmd/api",
			)
			return server.ListenAndServe()
		}, func(err error) {
			logger.Log(
				"message", "API server was interrupted",
				"error", err,
				"source", "cmd/api",
			)
			logger.Log(
				"message", "API server shut down",
				"error", server.Shutdown(ctx),
				"source", "cmd/api",
			)
		})
	}

	err = g.Run()
	logger.Log("message", "actors stopped", "error", err, "source", "cmd/api")
}

// logSMSer writes outgoing SMS messages to the log sink. It stands in
// for Twilio when no credentials are configured.
type logSMSer struct {
	logger log.Logger
}

func (l *logSMSer) SMS(ctx context.Context, phoneNumber string, message string) error {
	return l.logger.Log(
		"message", "sms delivery is not configured",
		"recipient", phoneNumber,
		"body", message,
		"source", "cmd/api",
	)
}

// logEmailer writes outgoing email messages to the log sink.
type logEmailer struct {
	logger log.Logger
}

func (l *logEmailer) Email(ctx context.Context, email string, message string) error {
	return l.logger.Log(
		"message", "email delivery is not configured",
		"recipient", email,
		"body", message,
		"source", "cmd/api",
	)
}
