// Package renderer draws the simulation with raylib.
package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/systems"
)

// overlayLift keeps the contamination plane above the map to avoid z-fighting.
const overlayLift = 0.01

// MapRenderer draws the map plane and the contamination overlay on top.
type MapRenderer struct {
	bounds systems.MapBounds

	mapModel    rl.Model
	mapTexture  rl.Texture2D
	maskModel   rl.Model
	maskTexture rl.Texture2D
	maskPixels  []color.RGBA // upload scratch
	initialized bool
}

// NewMapRenderer creates a renderer for a map covering bounds.
func NewMapRenderer(bounds systems.MapBounds) *MapRenderer {
	return &MapRenderer{bounds: bounds}
}

// Init uploads the map image and allocates the overlay texture. The map image
// is loaded from mapImage, or generated from backdrop when mapImage is empty.
// Must be called after the raylib window is created.
func (r *MapRenderer) Init(mapImage string, backdrop *systems.Backdrop, mask *systems.ContaminationMask) {
	if r.initialized {
		return
	}

	var img *rl.Image
	if mapImage != "" {
		img = rl.LoadImage(mapImage)
	} else {
		img = rl.NewImageFromImage(backdrop.Render(1024, 512, r.bounds))
	}
	r.mapTexture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.GenTextureMipmaps(&r.mapTexture)
	rl.SetTextureFilter(r.mapTexture, rl.FilterTrilinear)
	r.mapModel = r.planeModel(r.mapTexture)

	blank := rl.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, mask.Width(), mask.Height())))
	r.maskTexture = rl.LoadTextureFromImage(blank)
	rl.UnloadImage(blank)
	rl.SetTextureFilter(r.maskTexture, rl.FilterBilinear)
	r.maskModel = r.planeModel(r.maskTexture)

	r.initialized = true
}

// planeModel builds a plane mesh spanning the bounds textured with tex.
func (r *MapRenderer) planeModel(tex rl.Texture2D) rl.Model {
	w := float32(r.bounds.MaxX - r.bounds.MinX)
	h := float32(r.bounds.MaxZ - r.bounds.MinZ)
	model := rl.LoadModelFromMesh(rl.GenMeshPlane(w, h, 1, 1))
	rl.SetMaterialTexture(&model.GetMaterials()[0], rl.MapDiffuse, tex)
	return model
}

// Sync uploads the mask to the GPU when it changed since the last upload.
func (r *MapRenderer) Sync(mask *systems.ContaminationMask) {
	if !r.initialized || !mask.Dirty() {
		return
	}
	r.maskPixels = mask.StraightPixels(r.maskPixels)
	rl.UpdateTexture(r.maskTexture, r.maskPixels)
	mask.MarkClean()
}

// Draw renders the map and the overlay. Call inside BeginMode3D.
func (r *MapRenderer) Draw() {
	if !r.initialized {
		return
	}
	center := rl.Vector3{
		X: float32(r.bounds.MinX+r.bounds.MaxX) / 2,
		Z: float32(r.bounds.MinZ+r.bounds.MaxZ) / 2,
	}
	rl.DrawModel(r.mapModel, center, 1, rl.White)

	rl.BeginBlendMode(rl.BlendAlpha)
	center.Y = overlayLift
	rl.DrawModel(r.maskModel, center, 1, rl.White)
	rl.EndBlendMode()
}

// Unload frees resources.
func (r *MapRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadModel(r.mapModel)
	rl.UnloadModel(r.maskModel)
	rl.UnloadTexture(r.mapTexture)
	rl.UnloadTexture(r.maskTexture)
	r.initialized = false
}
