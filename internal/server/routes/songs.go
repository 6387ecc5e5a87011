package routes

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/logging"
	"github.com/songbook/songcache/internal/server"
	"github.com/songbook/songcache/internal/songbook"
	"github.com/songbook/songcache/internal/songparser"
)

// RegisterSongRoutes 暴露 /-/songs 诊断接口，按需构建目录或解析单首歌曲。
func RegisterSongRoutes(app *fiber.App, library *server.Library, logger logrus.FieldLogger) {
	if app == nil || library == nil {
		return
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	app.Get("/-/songs", func(c fiber.Ctx) error {
		catalog, err := library.Build(c.Context())
		if err != nil {
			logger.WithError(err).WithField("request_id", server.RequestID(c)).Error("catalog_build_failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "catalog_build_failed",
				"message": err.Error(),
			})
		}
		return c.JSON(catalogPayload{
			Songs: catalog.Summaries(),
			Stats: catalog.Stats,
		})
	})

	app.Get("/-/songs/:dir/*", func(c fiber.Ctx) error {
		dirParam := c.Params("dir")
		subpath := c.Params("*")
		res, p, err := library.Resolve(dirParam, subpath)
		if err != nil {
			status, code := classifyResolveError(err)
			entry := logger.WithError(err).WithFields(logrus.Fields{
				"datadir":    dirParam,
				"subpath":    subpath,
				"request_id": server.RequestID(c),
			})
			if status >= fiber.StatusInternalServerError {
				entry.Error("song_resolve_failed")
			} else {
				entry.Warn("song_resolve_rejected")
			}
			return c.Status(status).JSON(fiber.Map{"error": code})
		}

		logger.WithFields(logging.SongFields(p, res.Status.String(), res.FromCache)).
			WithField("request_id", server.RequestID(c)).
			Info("song_served")

		index, _ := strconv.Atoi(dirParam)
		entry := songbook.Entry{
			DataDirIndex: index,
			Path:         p,
			Record:       res.Record,
			Status:       res.Status,
			FromCache:    res.FromCache,
		}
		return c.JSON(songPayload{
			Summary:       entry.Summary(),
			ContentHash:   res.Record.ContentHash,
			FormatVersion: res.Record.FormatVersion,
			Data:          res.Record.Data,
		})
	})
}

type catalogPayload struct {
	Songs []songbook.Summary `json:"songs"`
	Stats songbook.Stats     `json:"stats"`
}

type songPayload struct {
	songbook.Summary
	ContentHash   string         `json:"content_hash"`
	FormatVersion int            `json:"format_version"`
	Data          map[string]any `json:"data"`
}

func classifyResolveError(err error) (int, string) {
	switch {
	case errors.Is(err, server.ErrUnknownDataDir):
		return fiber.StatusNotFound, "datadir_not_found"
	case errors.Is(err, server.ErrInvalidSubpath):
		return fiber.StatusBadRequest, "invalid_path"
	case errors.Is(err, fs.ErrNotExist):
		return fiber.StatusNotFound, "song_not_found"
	case errors.Is(err, songparser.ErrNoParser):
		return fiber.StatusUnsupportedMediaType, "parser_not_found"
	default:
		return fiber.StatusInternalServerError, "resolve_failed"
	}
}
