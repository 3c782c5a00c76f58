package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

const writeWait = 10 * time.Second

// StreamMessage is a single JSON message sent over the render websocket
type StreamMessage struct {
	Type      string          `json:"type"` // "progress", "console", "complete" or "error"
	RenderID  string          `json:"renderId"`
	RowsDone  int             `json:"rowsDone,omitempty"`
	TotalRows int             `json:"totalRows,omitempty"`
	Console   *ConsoleMessage `json:"console,omitempty"`
	ImageData string          `json:"imageData,omitempty"` // Base64 encoded PNG
	Stats     *Stats          `json:"stats,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Raytracer *renderer.Raytracer
	Seed      int64
}

// createPipeline builds the scene and raytracer for a request. Scene layout and
// rendering share one seeded sampler so a seed reproduces the image exactly.
func (s *Server) createPipeline(req *RenderRequest, engineLogger core.Logger) (*RenderingPipeline, error) {
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sampler := core.NewSeededSampler(seed)

	sceneObj, err := s.registry.Create(req.Scene, sampler, renderer.CameraConfig{Width: req.Width})
	if err != nil {
		return nil, err
	}

	config := sceneObj.SamplingConfig
	config.SamplesPerPixel = req.SamplesPerPixel
	config.MaxDepth = req.MaxDepth
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RenderingPipeline{
		Raytracer: renderer.NewRaytracer(sceneObj, config, sampler, engineLogger),
		Seed:      seed,
	}, nil
}

// handleRender renders synchronously and responds with the encoded image.
// The render stops as soon as the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("X-Render-Id", req.ID)

	pipeline, err := s.createPipeline(req, NewWebLogger(req.ID, nil))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Infof("[%s] Rendering %s at width %d, %d spp, depth %d, seed %d",
		req.ID, req.Scene, req.Width, req.SamplesPerPixel, req.MaxDepth, pipeline.Seed)
	img, stats, err := pipeline.Raytracer.RenderPass(r.Context(), nil)
	if err != nil {
		logger.Warningf("[%s] Render cancelled after %d samples: %v", req.ID, stats.TotalSamples, err)
		writeError(w, http.StatusServiceUnavailable, "render cancelled")
		return
	}
	logger.Infof("[%s] Render completed in %v", req.ID, stats.Duration)

	encode, err := output.EncoderFor(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		logger.Errorf("[%s] Failed to encode image: %v", req.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	contentType := "image/png"
	if req.Format == "ppm" {
		contentType = "image/x-portable-pixmap"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warningf("[%s] Failed to write response: %v", req.ID, err)
	}
}

// handleRenderWS renders while streaming row progress and engine console output over a
// websocket, then sends the finished image
func (s *Server) handleRenderWS(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("X-Render-Id", req.ID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		logger.Errorf("[%s] websocket accept: %v", req.ID, err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "render aborted")

	// The client never sends anything; CloseRead cancels ctx once it goes away
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()
	stream := &renderStream{ctx: ctx, cancel: cancel, conn: conn, renderID: req.ID}

	consoleChan := make(chan ConsoleMessage, 64)
	pipeline, err := s.createPipeline(req, NewWebLogger(req.ID, consoleChan))
	if err != nil {
		stream.send(StreamMessage{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "invalid request")
		return
	}

	logger.Infof("[%s] Streaming render of %s", req.ID, req.Scene)
	img, stats, err := pipeline.Raytracer.RenderPass(ctx, func(rowsDone, totalRows int) {
		stream.drainConsole(consoleChan)
		stream.send(StreamMessage{Type: "progress", RowsDone: rowsDone, TotalRows: totalRows})
	})
	stream.drainConsole(consoleChan)

	if err != nil || stream.err != nil {
		logger.Warningf("[%s] Client went away after %d samples: %v", req.ID, stats.TotalSamples, errors.Join(err, stream.err))
		return
	}

	imageData, err := imageToBase64PNG(img)
	if err != nil {
		stream.send(StreamMessage{Type: "error", Error: "failed to encode image"})
		return
	}

	apiStats := toStats(stats, renderer.CalculateAverageLuminance(img))
	stream.send(StreamMessage{Type: "complete", ImageData: imageData, Stats: &apiStats})
	if stream.err != nil {
		return
	}

	logger.Infof("[%s] Streaming render completed in %v", req.ID, stats.Duration)
	conn.Close(websocket.StatusNormalClosure, "")
}

// renderStream writes messages to a websocket until the first failure, which also
// cancels the render
type renderStream struct {
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *websocket.Conn
	renderID string
	err      error
}

func (rs *renderStream) send(msg StreamMessage) {
	if rs.err != nil {
		return
	}
	msg.RenderID = rs.renderID

	writeCtx, cancel := context.WithTimeout(rs.ctx, writeWait)
	defer cancel()
	if rs.err = wsjson.Write(writeCtx, rs.conn, msg); rs.err != nil {
		rs.cancel()
	}
}

func (rs *renderStream) drainConsole(consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			rs.send(StreamMessage{Type: "console", Console: &msg})
		default:
			return
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := output.WritePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
