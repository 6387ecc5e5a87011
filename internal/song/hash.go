package song

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentHash 计算源文件内容的摘要。只用于检测变化，不具备抗碰撞的安全属性。
func ContentHash(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}
