// SPDX-License-Identifier: GPL-3.0
// Copyright (C) 2026 ebpflow Contributors

// Package geoip provides optional country annotation for flow remote
// addresses, backed by a MaxMind GeoLite2-Country database with an LRU
// cache in front. The monitor only tracks IPv4 flows, so only an IPv4
// lookup is exposed.
package geoip

import (
	"log/slog"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

const defaultCacheSize = 65536

// Lookup resolves IPv4 addresses to ISO country codes. Unknown and
// private addresses resolve to "", which callers treat as "do not
// annotate". Safe for concurrent use.
type Lookup struct {
	mu    sync.RWMutex
	db    *geoip2.Reader
	cache *lruCache
}

// Open opens the GeoLite2-Country database at path. If cacheSize <= 0,
// defaultCacheSize is used.
func Open(path string, cacheSize int) (*Lookup, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Info("GeoIP database opened", "path", path, "cache_size", cacheSize)
	return &Lookup{
		db:    db,
		cache: newLRUCache(cacheSize),
	}, nil
}

func (l *Lookup) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// CountryV4 returns the ISO country code for a raw network-order IPv4
// address, or "" when the address cannot be resolved.
func (l *Lookup) CountryV4(addr [4]byte) string {
	if cc, ok := l.cache.get(addr); ok {
		return cc
	}

	l.mu.RLock()
	db := l.db
	l.mu.RUnlock()
	if db == nil {
		return ""
	}

	ip := net.IP(addr[:])
	record, err := db.Country(ip)
	if err != nil {
		slog.Debug("GeoIP lookup failed", "ip", ip.String(), "err", err)
		l.cache.put(addr, "")
		return ""
	}

	cc := record.Country.IsoCode
	l.cache.put(addr, cc)
	return cc
}
