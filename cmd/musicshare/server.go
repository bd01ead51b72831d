package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"musicshare/internal/app/admins"
	"musicshare/internal/app/albums"
	"musicshare/internal/app/artists"
	"musicshare/internal/app/playlists"
	"musicshare/internal/app/songs"
	"musicshare/internal/app/users"
	"musicshare/internal/assets"
	"musicshare/internal/auth"
	"musicshare/internal/config"
	"musicshare/internal/http/middleware"
	"musicshare/internal/httpapi"
	"musicshare/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, files assets.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	userSvc := users.New(dataStore, tokens)
	adminSvc := admins.New(dataStore, tokens)
	albumSvc := albums.New(dataStore, files)
	artistSvc := artists.New(dataStore)
	songSvc := songs.New(dataStore, files)
	playlistSvc := playlists.New(dataStore)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.Burst)
	api := httpapi.New(userSvc, adminSvc, albumSvc, artistSvc, songSvc, playlistSvc, files, auth.NewGate(tokens, dataStore), limiter)

	return middleware.Chain(api.Routes(),
		middleware.RequestLogging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}

func newAssetStore(ctx context.Context, cfg config.StorageConfig) (assets.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return assets.NewMemory(), nil
	case "s3", "":
		s3, err := assets.NewS3(ctx, assets.S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
