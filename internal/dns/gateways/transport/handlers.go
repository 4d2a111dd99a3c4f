package transport

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/gateways/wire"
)

type handler struct {
	reg    Registry
	stats  StatsFunc
	logger log.Logger
}

func registerRoutes(r *gin.Engine, h *handler) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/owner", h.owner)
	v1.GET("/resolver/:node", h.resolver)
	v1.GET("/names/:name", h.name)
	v1.GET("/names/:name/locked", h.locked)
	v1.GET("/records/:key", h.record)
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Entries   uint64 `json:"entries"`
	Records   uint64 `json:"records"`
	Locked    uint64 `json:"locked"`
	UpdatedAt int64  `json:"updated_unix"`
	CacheHits uint64 `json:"cache_hits"`
	CacheMiss uint64 `json:"cache_misses"`
}

type nameResponse struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	State  string `json:"state"`
	Locked bool   `json:"locked"`
	CID    string `json:"cid,omitempty"`
}

type recordResponse struct {
	Key   string   `json:"key"`
	Type  string   `json:"type"`
	Found bool     `json:"found"`
	RData string   `json:"rdata"`
	Name  string   `json:"name,omitempty"`
	TTL   uint32   `json:"ttl,omitempty"`
	TXT   []string `json:"txt,omitempty"`
}

func (h *handler) health(c *gin.Context) {
	resp := healthResponse{Status: "ok"}
	if h.stats != nil {
		st := h.stats()
		resp.Entries = st.Store.Entries
		resp.Records = st.Store.Records
		resp.Locked = st.Store.Locked
		resp.UpdatedAt = st.Store.UpdatedUnix
		resp.CacheHits = st.Cache.Hits
		resp.CacheMiss = st.Cache.Misses
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) owner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"owner": h.reg.Owner().String()})
}

func (h *handler) resolver(c *gin.Context) {
	node, err := domain.ParseNameKey(c.Param("node"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node.String(), "resolver": h.reg.Resolver(node).String()})
}

func (h *handler) name(c *gin.Context) {
	info, err := h.reg.Describe(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nameResponse{
		Name:   info.Name,
		Key:    info.Key.String(),
		State:  info.State.String(),
		Locked: info.Locked,
		CID:    info.CID,
	})
}

func (h *handler) locked(c *gin.Context) {
	name := c.Param("name")
	locked, err := h.reg.IsLocked(name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "locked": locked})
}

// record mirrors dnsRecord(node, key, type): an absent record is a 200 with
// found=false and empty rdata.
func (h *handler) record(c *gin.Context) {
	key, err := domain.ParseNameKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	rrType := domain.RRTypeTXT
	if s := c.Query("type"); s != "" {
		if rrType, err = domain.ParseRRType(s); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}
	var node domain.NameKey
	if s := c.Query("node"); s != "" {
		if node, err = domain.ParseNameKey(s); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	rdata, err := h.reg.DNSRecord(node, key, rrType)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := recordResponse{
		Key:   key.String(),
		Type:  rrType.String(),
		Found: len(rdata) > 0,
		RData: "0x" + hex.EncodeToString(rdata),
	}
	if resp.Found {
		if rr, err := wire.DecodeRecord(rdata); err == nil {
			resp.Name = rr.Name.String()
			resp.TTL = rr.TTL
			if txt, ok := rr.Text(); ok {
				resp.TXT = txt.Values()
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidName) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error(map[string]any{"path": c.Request.URL.Path, "error": err.Error()}, "lookup failed")
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
