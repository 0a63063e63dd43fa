package config_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gncurator/pkg/config"
)

var _ = Describe("Config", func() {
	It("creates default configuration", func() {
		cfg := config.New()
		Expect(cfg.WorkersNum).To(Equal(1))
		Expect(cfg.Prefix).To(Equal("06"))
		Expect(cfg.StoreType).To(Equal(config.StoreSQLite))
		Expect(cfg.CounterType).To(Equal(config.CounterFile))
		Expect(cfg.CounterDir).To(Equal(filepath.Join(cfg.CacheDir, "counters")))
	})

	It("uses options for setup", func() {
		cfg := config.New(
			config.OptCacheDir("/tmp/gncurator"),
			config.OptWorkersNum(8),
			config.OptStoreType(config.StoreSparql),
			config.OptTimeout(time.Second),
			config.OptSeparator("|"),
		)
		Expect(cfg.WorkersNum).To(Equal(8))
		Expect(cfg.CounterDir).To(Equal("/tmp/gncurator/counters"))
		Expect(cfg.SqlitePath).To(Equal("/tmp/gncurator/mirror.sqlite"))
		Expect(cfg.StoreType).To(Equal(config.StoreSparql))
		Expect(cfg.Timeout).To(Equal(time.Second))
		Expect(cfg.Separator).To(Equal("|"))
	})
})
