// Package songparser 聚合各类歌曲源文件的解析器，并提供按扩展名注册与查找的统一入口。
//
// 解析器作者需要：
//  1. 在 internal/songparser/<format>/ 目录下实现 Parser 接口；
//  2. 在 init() 中通过 MustRegister 注册扩展名与描述；
//  3. 保证产出的 Data 至少包含 @titles 与 @languages，作者信息写入 by。
package songparser
