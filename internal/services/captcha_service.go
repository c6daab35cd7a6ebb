package services

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/steambap/captcha"

	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/utils"
)

// captchaCharset deliberately contains no two characters that the alias
// table treats as equivalent, so a generated code is never visually
// ambiguous on a legitimate basis.
const captchaCharset = "346ACDEFHJKMNPQRTUVWXY"

// aliasTable maps visually confusable characters onto a canonical
// representative. Applied to both sides before comparison.
var aliasTable = map[rune]rune{
	'O': '0',
	'I': '1',
	'L': '1',
	'7': '1',
	'Z': '2',
	'S': '5',
	'B': '8',
	'G': '9',
}

// CaptchaChallenge is transient: the expected code lives only in the
// in-process TTL cache, keyed by ID.
type CaptchaChallenge struct {
	ID       string
	ImagePNG []byte
	Width    int
	Height   int
}

type CaptchaService interface {
	// Generate renders a distorted image challenge and caches the
	// expected code under a fresh id.
	Generate() (*CaptchaChallenge, error)
	// Verify checks a user answer against the cached code for id. The
	// cached entry is single-use: it is dropped on first lookup.
	Verify(id, answer string) bool
}

type captchaService struct {
	store *cache.Cache
	cfg   *config.Config
}

func NewCaptchaService(cfg *config.Config) CaptchaService {
	return &captchaService{
		store: cache.New(cfg.CaptchaTTL, 2*cfg.CaptchaTTL),
		cfg:   cfg,
	}
}

func (s *captchaService) Generate() (*CaptchaChallenge, error) {
	data, err := captcha.New(s.cfg.CaptchaWidth, s.cfg.CaptchaHeight, func(o *captcha.Options) {
		o.CharPreset = captchaCharset
		o.TextLength = s.cfg.CaptchaLength
		o.CurveNumber = 2
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := data.WriteImage(&buf); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	s.store.Set(id, data.Text, cache.DefaultExpiration)

	return &CaptchaChallenge{
		ID:       id,
		ImagePNG: buf.Bytes(),
		Width:    s.cfg.CaptchaWidth,
		Height:   s.cfg.CaptchaHeight,
	}, nil
}

func (s *captchaService) Verify(id, answer string) bool {
	v, found := s.store.Get(id)
	if !found {
		return false
	}
	// Single use regardless of outcome.
	s.store.Delete(id)

	expected, ok := v.(string)
	if !ok {
		return false
	}
	if !CaptchaCodesMatch(expected, answer) {
		utils.Logger.Debugf("Captcha mismatch for challenge %s", id)
		return false
	}
	return true
}

// CaptchaCodesMatch compares two captcha codes case-insensitively after
// mapping both through the alias table.
func CaptchaCodesMatch(expected, actual string) bool {
	e := normalizeCaptcha(expected)
	a := normalizeCaptcha(actual)
	if len(e) != len(a) {
		return false
	}
	for i := range e {
		if e[i] != a[i] {
			return false
		}
	}
	return true
}

func normalizeCaptcha(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range strings.ToUpper(s) {
		if canonical, ok := aliasTable[r]; ok {
			r = canonical
		}
		out = append(out, r)
	}
	return out
}
