package sparqlio_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/segmentio/encoding/json"

	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/row"
	"github.com/gnames/gncurator/internal/io/sparqlio"
	"github.com/gnames/gncurator/pkg/config"
)

const (
	meta     = "https://w3id.org/oc/meta/"
	fabio    = "http://purl.org/spar/fabio/"
	datacite = "http://purl.org/spar/datacite/"
)

type term map[string]string

// answer renders SPARQL JSON results. Values starting with `http` are IRIs.
func answer(w http.ResponseWriter, sols ...map[string]string) {
	bindings := make([]map[string]term, len(sols))
	for i, sol := range sols {
		bindings[i] = make(map[string]term)
		for k, v := range sol {
			typ := "literal"
			if strings.HasPrefix(v, "http") {
				typ = "uri"
			}
			bindings[i][k] = term{"type": typ, "value": v}
		}
	}
	res := map[string]any{
		"head":    map[string]any{"vars": []string{}},
		"results": map[string]any{"bindings": bindings},
	}
	w.Header().Set("Content-Type", "application/sparql-results+json")
	_ = json.NewEncoder(w).Encode(res)
}

func endpoint(w http.ResponseWriter, r *http.Request) {
	defer GinkgoRecover()
	Expect(r.Method).To(Equal(http.MethodPost))
	Expect(r.Header.Get("Accept")).To(Equal("application/sparql-results+json"))
	Expect(r.ParseForm()).To(Succeed())
	q := r.PostForm.Get("query")
	Expect(q).To(ContainSubstring("PREFIX fabio:"))

	switch {
	case strings.Contains(q, "pro:isDocumentContextFor"):
		Expect(q).To(ContainSubstring("pro:withRole pro:author"))
		answer(w,
			map[string]string{"ar": meta + "ar/4002", "ra": meta + "ra/3002"},
			map[string]string{
				"ar": meta + "ar/4001", "ra": meta + "ra/3001", "next": meta + "ar/4002",
			},
		)
	case strings.Contains(q, "frbr:embodiment"):
		answer(w, map[string]string{
			"re": meta + "re/5001", "start": "69", "end": "76",
		})
	case strings.Contains(q, "?part frbr:partOf"):
		answer(w,
			map[string]string{
				"part": meta + "br/1002", "type": fabio + "JournalVolume", "label": "5",
				"sub": meta + "br/1003", "subLabel": "2",
			},
			map[string]string{
				"part": meta + "br/1002", "type": fabio + "Expression", "label": "5",
				"sub": meta + "br/1003", "subLabel": "2",
			},
			map[string]string{
				"part": meta + "br/1004", "type": fabio + "JournalIssue", "label": "s1",
			},
		)
	case strings.Contains(q, "SELECT ?type ?date"):
		switch {
		case strings.Contains(q, "<"+meta+"br/1001>"):
			answer(w,
				map[string]string{"type": fabio + "Expression", "date": "2012-03-31",
					"part": meta + "br/1003"},
				map[string]string{"type": fabio + "JournalArticle", "date": "2012-03-31",
					"part": meta + "br/1003"},
			)
		case strings.Contains(q, "<"+meta+"br/1003>"):
			answer(w, map[string]string{
				"type": fabio + "JournalIssue", "label": "2", "part": meta + "br/1002",
			})
		case strings.Contains(q, "<"+meta+"br/1002>"):
			answer(w, map[string]string{
				"type": fabio + "JournalVolume", "label": "5", "part": meta + "br/1000",
			})
		case strings.Contains(q, "<"+meta+"br/1000>"):
			answer(w, map[string]string{"type": fabio + "Journal"})
		default:
			answer(w)
		}
	case strings.Contains(q, `literal:hasLiteralValue "10.1234/abc"`):
		answer(w,
			map[string]string{
				"res": meta + "br/1001", "title": "Stored",
				"id": meta + "id/2002", "scheme": datacite + "pmid", "value": "5",
			},
			map[string]string{
				"res": meta + "br/1001", "title": "Stored",
				"id": meta + "id/2001", "scheme": datacite + "doi", "value": "10.1234/abc",
			},
		)
	case strings.Contains(q, "<"+meta+"ra/3001>"):
		answer(w, map[string]string{
			"res": meta + "ra/3001", "family": "Aa", "given": "Anna",
			"id": meta + "id/6001", "scheme": datacite + "orcid",
			"value": "0000-0002-1825-0097",
		})
	case strings.Contains(q, "<"+meta+"ra/3002>"):
		answer(w, map[string]string{"res": meta + "ra/3002", "family": "Bee"})
	default:
		answer(w)
	}
}

var _ = Describe("Sparqlio", func() {
	var (
		ctx   context.Context
		srv   *httptest.Server
		store finder.Store
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		srv = httptest.NewServer(http.HandlerFunc(endpoint))
		cfg := config.New(
			config.OptSparqlURL(srv.URL),
			config.OptRetries(1),
			config.OptTimeout(5*time.Second),
		)
		store, err = sparqlio.New(cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		srv.Close()
	})

	It("finds resources by identifiers", func() {
		ents, err := store.BRFromID(ctx, "doi", "10.1234/abc")
		Expect(err).ToNot(HaveOccurred())
		Expect(ents).To(Equal([]finder.Entity{{
			Meta:  "1001",
			Title: "Stored",
			IDs: []finder.IDRef{
				{Meta: "2001", Token: "doi:10.1234/abc"},
				{Meta: "2002", Token: "pmid:5"},
			},
		}}))

		ents, err = store.BRFromID(ctx, "doi", "10.1234/none")
		Expect(err).ToNot(HaveOccurred())
		Expect(ents).To(BeEmpty())
	})

	It("ignores schemes that cannot be queried", func() {
		ents, err := store.BRFromID(ctx, "doi> ?x", "1")
		Expect(err).ToNot(HaveOccurred())
		Expect(ents).To(BeEmpty())
	})

	It("returns agents by keys", func() {
		ent, found, err := store.RAFromMeta(ctx, "3001", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(ent.Title).To(Equal("Aa, Anna"))
		Expect(ent.IDs).To(Equal([]finder.IDRef{
			{Meta: "6001", Token: "orcid:0000-0002-1825-0097"},
		}))

		_, found, err = store.RAFromMeta(ctx, "3009", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("orders agent sequences", func() {
		agents, err := store.RASequence(ctx, "1001", row.Author)
		Expect(err).ToNot(HaveOccurred())
		Expect(agents).To(HaveLen(2))
		Expect(agents[0].AR).To(Equal("4001"))
		Expect(agents[0].RA.Title).To(Equal("Aa, Anna"))
		Expect(agents[1].AR).To(Equal("4002"))
		Expect(agents[1].RA.Title).To(Equal("Bee,"))
	})

	It("walks containment of a resource", func() {
		info, found, err := store.BRInfo(ctx, "1001")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(info).To(Equal(finder.Info{
			Venue:   "1000",
			Volume:  "5",
			Issue:   "2",
			PubDate: "2012-03-31",
			Type:    "journal article",
			Page:    finder.Page{Meta: "5001", Range: "69-76"},
		}))

		_, found, err = store.BRInfo(ctx, "1999")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("builds volumes and issues of a venue", func() {
		v, err := store.Venue(ctx, "1000")
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Volumes).To(HaveLen(1))
		Expect(v.Volumes["5"].ID).To(Equal(key.Permanent("1002")))
		Expect(v.Volumes["5"].Issues["2"].ID).To(Equal(key.Permanent("1003")))
		Expect(v.Issues["s1"].ID).To(Equal(key.Permanent("1004")))
	})

	It("reports failing endpoints", func() {
		srv.Close()
		failing := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			}))
		defer failing.Close()
		cfg := config.New(config.OptSparqlURL(failing.URL), config.OptRetries(1))
		s, err := sparqlio.New(cfg)
		Expect(err).ToNot(HaveOccurred())

		_, err = finder.New(s).FromID(ctx, key.BR, "doi:10.1234/abc", false)
		Expect(err).To(MatchError(finder.ErrStoreUnavailable))
	})
})
