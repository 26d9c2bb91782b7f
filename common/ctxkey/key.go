package ctxkey

const (
	Id        = "id"
	ImageFile = "image_file"
	ImageInfo = "image_info"
)
