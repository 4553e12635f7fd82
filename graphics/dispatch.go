// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package graphics

// Handle runs a command to completion and returns its formatted response,
// tying together Dispatch and Respond (sections 4.8 and 4.9). Most callers
// should use this; Dispatch is exposed separately for callers (tests) that
// want the raw *CommandError.
func (m *Manager) Handle(cmd *Command) string {
	cerr := m.Dispatch(cmd)
	return m.Respond(cmd, cerr)
}

// Dispatch implements the Command Dispatcher (section 4.8): it switches on
// the command's action, maintains the in-progress multi-chunk transmission
// state, and returns the CommandError to be formatted by Respond (nil on
// success).
func (m *Manager) Dispatch(cmd *Command) *CommandError {
	if cmd.ID != 0 && cmd.ImageNumber != 0 {
		return newErr(EINVAL, "a command cannot specify both id and image_number")
	}

	switch cmd.Action {
	case ActionTransmit, ActionTransmitAndDisplay, ActionQuery:
		return m.dispatchAdd(cmd)
	case ActionDisplay:
		return m.dispatchPut(cmd)
	case ActionDelete:
		return m.Delete(cmd)
	default:
		return newErr(EINVAL, "unsupported action: %q", byte(cmd.Action))
	}
}

func (m *Manager) dispatchAdd(cmd *Command) *CommandError {
	if cmd.Continuation {
		return m.continueChunked(cmd)
	}

	if cerr := m.validateAddDimensions(cmd); cerr != nil {
		return cerr
	}

	clientID := cmd.ID
	if clientID == 0 && cmd.ImageNumber != 0 {
		clientID = m.store.freeClientID()
	}
	// A second add with an existing client_id replaces the image in place:
	// same client_id, but a fresh internal_id (section 8), so the old
	// image is destroyed and dropped before a new slot is created rather
	// than reused via store.findOrCreate's normal reuse path.
	if clientID != 0 {
		if existing := m.store.byClientID(clientID); existing != nil {
			m.destroyImage(existing)
			m.store.remove(existing)
		}
	}
	img, _ := m.store.findOrCreate(clientID)
	img.ClientNumber = cmd.ImageNumber
	img.Width = int(cmd.DataWidth)
	img.Height = int(cmd.DataHeight)
	img.DataLoaded = false
	img.Atime = m.Now()
	img.Load = &LoadData{
		Transmission: cmd.Transmission,
		Format:       cmd.Format,
		Compressed:   cmd.Compressed,
		DataSize:     int(cmd.DataSize),
	}

	if cmd.More && cmd.Transmission == TransmissionDirect {
		initCopy := *cmd
		cmd = &initCopy
	}

	return m.continueAdd(cmd, img)
}

// continueChunked resurrects the init command's parameters for a follow-on
// chunk that carries only payload/more, per section 4.8.
func (m *Manager) continueChunked(cmd *Command) *CommandError {
	if m.loadingImage == 0 {
		return wrapErr(EILSEQ, ErrNoLoadingImage, "follow-on chunk with no in-progress transmission")
	}
	img := m.store.byInternalID(m.loadingImage)
	if img == nil || img.Load == nil {
		m.loadingImage = 0
		m.loadingCommand = nil
		return wrapErr(EILSEQ, ErrNoLoadingImage, "in-progress image no longer exists")
	}
	init := *m.loadingCommand
	init.More = cmd.More
	init.PayloadSize = cmd.PayloadSize
	init.Payload = cmd.Payload

	// A follow-on chunk carries no id/number/placement keys of its own;
	// stamp the resurrected values back onto it so Respond reports the
	// same identifiers the init command did (section 4.9).
	cmd.ID = init.ID
	cmd.ImageNumber = init.ImageNumber
	cmd.PlacementID = init.PlacementID

	return m.continueAdd(&init, img)
}

// continueAdd appends the chunk's payload and, once the transmission is
// complete (more == false, or the transmission type isn't chunkable),
// decodes, validates, uploads, and runs the storage quota.
func (m *Manager) continueAdd(cmd *Command, img *Image) *CommandError {
	if cerr := acquirePayload(m, cmd, img.Load); cerr != nil {
		m.abortLoad(img)
		return cerr
	}

	if cmd.More && cmd.Transmission == TransmissionDirect {
		m.loadingImage = img.InternalID
		m.loadingCommand = cmd
		return nil
	}
	m.loadingImage = 0
	m.loadingCommand = nil

	if cerr := m.finishAdd(cmd, img); cerr != nil {
		m.abortLoad(img)
		return cerr
	}

	if cmd.Action == ActionQuery {
		// A query never leaves the image resident: it is destroyed here,
		// before enforceQuota, whose trim-unreferenced pass exempts the
		// image just added, so it never counts toward the storage quota.
		m.destroyImage(img)
		m.store.remove(img)
		return nil
	}

	m.enforceQuota(img)

	if cmd.Action == ActionTransmitAndDisplay {
		return m.put(cmd, img)
	}
	return nil
}

// abortLoad implements section 7's local recovery: a failed add aborts
// only its own image.
func (m *Manager) abortLoad(img *Image) {
	m.loadingImage = 0
	m.loadingCommand = nil
	m.destroyImage(img)
	m.store.remove(img)
}

// finishAdd decompresses (if needed), decodes, validates, and uploads the
// assembled payload, per section 4.2.
func (m *Manager) finishAdd(cmd *Command, img *Image) *CommandError {
	ld := img.Load
	raw := ld.Data()

	if ld.Compressed == CompressionZlib {
		inflated, cerr := inflate(raw, ld.DataSize)
		if cerr != nil {
			return cerr
		}
		raw = inflated
	}

	var pixels []byte
	var isOpaque bool
	switch cmd.Format {
	case FormatPNG:
		p, w, h, opaque, err := m.PNG.Decode(raw)
		if err != nil {
			return wrapErr(EINVAL, err, "png decode failed")
		}
		img.Width, img.Height = w, h
		pixels, isOpaque = p, opaque
	case FormatRGB:
		pixels, isOpaque = raw, true
	case FormatRGBA:
		pixels, isOpaque = raw, false
	default:
		return newErr(EINVAL, "unsupported format: %d", cmd.Format)
	}

	if cerr := validateDecodedSize(len(pixels), isOpaque, img.Width, img.Height); cerr != nil {
		return cerr
	}

	ld.IsOpaque = isOpaque
	ld.Is4ByteAligned = (img.Width*bytesPerPixel(isOpaque))%4 == 0

	textureID, err := m.GPU.UploadTexture(pixels, img.Width, img.Height, isOpaque, ld.Is4ByteAligned)
	if err != nil {
		return wrapErr(ENOMEM, err, "gpu texture upload failed")
	}

	img.TextureID = textureID
	img.UsedStorage = int64(len(pixels))
	img.DataLoaded = true
	ld.Release()
	img.Load = nil
	return nil
}

// validateAddDimensions implements section 4.8's rejection rules that
// apply to the declared transmission shape.
func (m *Manager) validateAddDimensions(cmd *Command) *CommandError {
	if cmd.DataWidth > uint32(m.Limits.MaxDimension) || cmd.DataHeight > uint32(m.Limits.MaxDimension) {
		return newErr(EINVAL, "declared dimensions %dx%d exceed the %d px limit", cmd.DataWidth, cmd.DataHeight, m.Limits.MaxDimension)
	}
	if cmd.Format == FormatPNG {
		if cmd.DataSize > uint64(m.Limits.MaxTransmittedSize) {
			return newErr(EINVAL, "png payload of %d bytes exceeds the %d byte limit", cmd.DataSize, m.Limits.MaxTransmittedSize)
		}
		return nil
	}
	if cmd.DataWidth == 0 || cmd.DataHeight == 0 {
		return newErr(EINVAL, "zero dimension for format %d", cmd.Format)
	}
	return nil
}

func (m *Manager) dispatchPut(cmd *Command) *CommandError {
	if cmd.ID == 0 && cmd.ImageNumber == 0 {
		return newErr(EINVAL, "put requires an image id or number")
	}
	img := m.resolveImage(cmd)
	if img == nil {
		return wrapErr(ENOENT, ErrImageNotFound, "put references a missing image")
	}
	img.Atime = m.Now()
	return m.put(cmd, img)
}

func (m *Manager) resolveImage(cmd *Command) *Image {
	if cmd.ID != 0 {
		return m.store.byClientID(cmd.ID)
	}
	if cmd.ImageNumber != 0 {
		return m.store.byClientNumber(cmd.ImageNumber)
	}
	return nil
}
