package kms

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/bufcrypt"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"k8s.io/utils/ptr"
)

const RequestIDHeader = "x-request-id"

type ServerSettings struct {
	Logger    *zap.SugaredLogger
	Crypto    *bufcrypt.Crypto      // bufcrypt.Default() when nil
	Registry  prometheus.Registerer // metrics are not registered when nil
	Algorithm base.Algorithm        // used for requests without algorithm, aes256-gcm when zero
}

func (s *ServerSettings) Validate() error {
	if s.Algorithm != 0 && !s.Algorithm.Valid() {
		return fmt.Errorf("default algorithm %v: %w", s.Algorithm, base.ErrInvalidEnum)
	}
	return nil
}

type Server struct {
	logger    *zap.SugaredLogger
	crypto    *bufcrypt.Crypto
	metrics   *metrics
	algorithm base.Algorithm
}

var _ CryptoServer = (*Server)(nil)

func NewServer(settings *ServerSettings) (*Server, error) {
	if settings == nil {
		settings = &ServerSettings{}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m, err := newMetrics(settings.Registry)
	if err != nil {
		return nil, fmt.Errorf("unable to register metrics: %w", err)
	}
	s := &Server{
		logger:    settings.Logger,
		crypto:    settings.Crypto,
		metrics:   m,
		algorithm: settings.Algorithm,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.crypto == nil {
		s.crypto = bufcrypt.Default()
	}
	if s.algorithm == 0 {
		s.algorithm = base.AlgorithmAES256GCM
	}
	return s, nil
}

// NewGRPCServer returns a grpc.Server with the service registered and the
// logging/metrics interceptor installed ahead of any interceptor in opts.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.intercept)}, opts...)
	g := grpc.NewServer(opts...)
	RegisterCryptoServer(g, s)
	return g
}

func (s *Server) intercept(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := ulid.Make().String()
	method := path.Base(info.FullMethod)
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	s.metrics.requests.WithLabelValues(method, code.String()).Inc()
	s.metrics.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		s.logger.Debugf("%s %s failed after %v: %v", id, method, elapsed, err)
	} else {
		s.logger.Debugf("%s %s done in %v", id, method, elapsed)
	}
	return resp, err
}

func (s *Server) Seal(ctx context.Context, req *SealRequest) (*SealResponse, error) {
	alg := ptr.Deref(req.Algorithm, s.algorithm)
	flags := ptr.Deref(req.Flags, base.FlagsNone)
	ret := &SealResponse{
		Iv:   req.Iv,
		Tag:  make([]byte, base.GCM_TAG_LENGTH),
		Data: req.Data,
	}
	err := s.crypto.Encrypt(base.Mutable(ret.Data), req.Aad, alg, flags, req.Key, ret.Iv, ret.Tag)
	if err != nil {
		return nil, toStatus(err)
	}
	if flags.Has(base.FlagsGenerateKey) {
		ret.Key = req.Key
	}
	s.metrics.payload.WithLabelValues("Seal").Add(float64(len(ret.Data)))
	return ret, nil
}

func (s *Server) Open(ctx context.Context, req *OpenRequest) (*OpenResponse, error) {
	alg := ptr.Deref(req.Algorithm, s.algorithm)
	err := s.crypto.Decrypt(base.Mutable(req.Data), req.Aad, alg, req.Key, req.Tag, req.Iv)
	if err != nil {
		if errors.Is(err, base.ErrInvalidState) {
			s.metrics.failures.Inc()
		}
		return nil, toStatus(err)
	}
	s.metrics.payload.WithLabelValues("Open").Add(float64(len(req.Data)))
	return &OpenResponse{Data: req.Data}, nil
}

func (s *Server) Digest(ctx context.Context, req *DigestRequest) (*DigestResponse, error) {
	kind, err := ParseDigestKind(string(ptr.Deref(req.Kind, DigestSHA256)))
	if err != nil {
		return nil, toStatus(err)
	}
	var sum []byte
	switch kind {
	case DigestSHA256:
		h := s.crypto.Sha256(req.Data)
		sum = h[:]
	case DigestMD5:
		h := s.crypto.Md5(req.Data)
		sum = h[:]
	}
	s.metrics.payload.WithLabelValues("Digest").Add(float64(len(req.Data)))
	return &DigestResponse{Sum: sum}, nil
}
