package handlers

import (
	"achievify/internal/service"
	"achievify/internal/storage"
	"bytes"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
)

// sniffLen is how much of a blob is read to decide its served type.
const sniffLen = 3072

// ServeUpload streams a stored blob back at its public path. The
// Content-Type comes from the stored bytes, not from the key.
func (h *Handler) ServeUpload(c *fiber.Ctx) error {
	key := c.Params("*")
	body, size, err := h.deps.Blobs.Open(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotExist) || errors.Is(err, storage.ErrBadKey) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		_ = body.Close()
		return err
	}
	head = head[:n]

	c.Set(fiber.HeaderContentType, service.ServedType(head))
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.SendStream(struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), body), body}, int(size))
}

// Timetable

func (h *Handler) GetTimetable(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	entry, err := h.deps.Timetable.Current(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (h *Handler) UploadTimetable(c *fiber.Ctx) error {
	userID, err := h.formOwner(c)
	if err != nil {
		return err
	}
	upload, f, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	if f != nil {
		defer f.Close()
	}
	entry, err := h.deps.Timetable.Upload(c.UserContext(), userID, c.FormValue("title"), upload)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (h *Handler) DeleteTimetable(c *fiber.Ctx) error {
	userID, err := h.queryOwner(c)
	if err != nil {
		return err
	}
	if err := h.deps.Timetable.Delete(c.UserContext(), pathID(c), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// Wall images

func (h *Handler) UploadWallImage(c *fiber.Ctx) error {
	userID, err := h.formOwner(c)
	if err != nil {
		return err
	}
	upload, f, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	if f != nil {
		defer f.Close()
	}
	item, err := h.deps.Wall.AddImage(c.UserContext(), userID, c.FormValue("caption"), upload)
	if err != nil {
		return err
	}
	return c.JSON(item)
}
