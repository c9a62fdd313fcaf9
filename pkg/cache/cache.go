// Package cache fournit un cache Redis des instantanés KPI, indexé par jeu de
// données et critères de filtre.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kpi-dashboard/pkg/models"
)

var ErrAddressRequired = errors.New("redis address is required")

// Config contient les paramètres de connexion Redis du cache d'instantanés.
type Config struct {
	Address string        `yaml:"address"`
	Prefix  string        `yaml:"prefix" default:"kpi"`
	TTL     time.Duration `yaml:"ttl" default:"10m"`
}

// Validate vérifie la configuration; une adresse vide désactive le cache en amont.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrAddressRequired
	}
	if c.Prefix == "" {
		c.Prefix = "kpi"
	}
	return nil
}

// SnapshotCache stocke les instantanés encodés en JSON dans Redis.
type SnapshotCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New crée un cache sur un client existant.
func New(client *redis.Client, prefix string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, prefix: prefix, ttl: ttl}
}

// Dial se connecte à Redis selon la configuration et vérifie la connexion.
func Dial(ctx context.Context, cfg Config) (*SnapshotCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Address})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, cfg.Prefix, cfg.TTL), nil
}

// Close libère le client sous-jacent.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

// Key construit la clé de cache; les critères de filtre en font toujours partie.
func (c *SnapshotCache) Key(dataset string, crit models.Criteria) string {
	return fmt.Sprintf("%s:snapshot:%s:%s", c.prefix, dataset, crit.Key())
}

// Get renvoie l'instantané en cache, ou nil s'il est absent.
func (c *SnapshotCache) Get(ctx context.Context, dataset string, crit models.Criteria) (*models.Snapshot, error) {
	data, err := c.client.Get(ctx, c.Key(dataset, crit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set enregistre un instantané avec le TTL configuré.
func (c *SnapshotCache) Set(ctx context.Context, dataset string, crit models.Criteria, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(dataset, crit), data, c.ttl).Err()
}

// Invalidate supprime tous les instantanés en cache d'un jeu de données.
func (c *SnapshotCache) Invalidate(ctx context.Context, dataset string) (int, error) {
	pattern := fmt.Sprintf("%s:snapshot:%s:*", c.prefix, dataset)
	removed := 0

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}
