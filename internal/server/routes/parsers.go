package routes

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/songbook/songcache/internal/songparser"
)

// RegisterParserRoutes 暴露 /-/parsers 诊断接口，列出已注册的歌曲解析器。
func RegisterParserRoutes(app *fiber.App) {
	if app == nil {
		return
	}

	app.Get("/-/parsers", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"parsers": encodeParsers(songparser.List())})
	})

	app.Get("/-/parsers/:ext", func(c fiber.Ctx) error {
		ext := strings.TrimSpace(c.Params("ext"))
		if ext == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "extension_required"})
		}
		reg, ok := songparser.Resolve(ext)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "parser_not_found"})
		}
		return c.JSON(encodeParser(reg))
	})
}

type parserPayload struct {
	Extension   string `json:"extension"`
	Description string `json:"description"`
}

func encodeParsers(regs []songparser.Registration) []parserPayload {
	result := make([]parserPayload, 0, len(regs))
	for _, reg := range regs {
		result = append(result, encodeParser(reg))
	}
	return result
}

func encodeParser(reg songparser.Registration) parserPayload {
	return parserPayload{Extension: reg.Extension, Description: reg.Description}
}
