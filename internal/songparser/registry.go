package songparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNoParser 表示没有解析器能处理该扩展名。
var ErrNoParser = errors.New("no parser registered")

// Registration 记录一个解析器及其静态信息，供查找与诊断端使用。
type Registration struct {
	Extension   string
	Description string
	Parser      Parser
}

var globalRegistry = newRegistry()

type registry struct {
	mu      sync.RWMutex
	parsers map[string]Registration
}

func newRegistry() *registry {
	return &registry{parsers: make(map[string]Registration)}
}

// Register 将解析器加入全局注册表，重复扩展名会返回错误。
func Register(reg Registration) error {
	return globalRegistry.register(reg)
}

// MustRegister 在注册失败时 panic，适合解析器 init() 中调用。
func MustRegister(reg Registration) {
	if err := Register(reg); err != nil {
		panic(err)
	}
}

// Resolve 返回指定扩展名的注册信息，扩展名大小写不敏感，可带或不带前导点。
func Resolve(ext string) (Registration, bool) {
	return globalRegistry.resolve(ext)
}

// ForPath 根据文件扩展名查找解析器。
func ForPath(path string) (Parser, error) {
	ext := filepath.Ext(path)
	reg, ok := Resolve(ext)
	if !ok {
		return nil, fmt.Errorf("%w for %q (%s)", ErrNoParser, ext, path)
	}
	return reg.Parser, nil
}

// List 返回按扩展名排序的注册信息列表。
func List() []Registration {
	return globalRegistry.list()
}

// Keys 返回所有已注册的扩展名，供调试或诊断使用。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, reg := range items {
		result[i] = reg.Extension
	}
	return result
}

func (r *registry) normalizeKey(ext string) string {
	key := strings.ToLower(strings.TrimSpace(ext))
	if key != "" && !strings.HasPrefix(key, ".") {
		key = "." + key
	}
	return key
}

func (r *registry) register(reg Registration) error {
	key := r.normalizeKey(reg.Extension)
	if key == "" {
		return fmt.Errorf("parser extension is required")
	}
	if reg.Parser == nil {
		return fmt.Errorf("parser for %s is nil", key)
	}
	reg.Extension = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[key]; exists {
		return fmt.Errorf("parser %s already registered", key)
	}
	r.parsers[key] = reg
	return nil
}

func (r *registry) resolve(ext string) (Registration, bool) {
	key := r.normalizeKey(ext)
	if key == "" {
		return Registration{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.parsers[key]
	return reg, ok
}

func (r *registry) list() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.parsers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.parsers))
	for key := range r.parsers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Registration, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.parsers[key])
	}
	return result
}
