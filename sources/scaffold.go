package sources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-shader-export/export"
)

// VertexTemplate is the vertex stage written for new shaders.
const VertexTemplate = `varying vec2 vUv;

void main() {
  vUv = uv;
  gl_Position = projectionMatrix * modelViewMatrix * vec4(position, 1.0);
}
`

// FragmentTemplate is the fragment stage written for new shaders.
const FragmentTemplate = `uniform float uTime;
uniform vec2 uResolution;

varying vec2 vUv;

void main() {
  vec2 st = vUv;
  
  // Your shader code here
  vec3 color = vec3(st.x, st.y, abs(sin(uTime)));
  
  gl_FragColor = vec4(color, 1.0);
}
`

var writeFile = os.WriteFile

// Scaffold creates <root>/<name> holding the template vertex and fragment
// stages and returns the new directory. A failed scaffold removes the
// directory it created.
func Scaffold(root, name string) (string, error) {
	if root == "" {
		return "", export.NewError(export.KindValidation, "shader root is required", nil)
	}
	if err := ValidateID(name); err != nil {
		return "", err
	}

	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err == nil {
		return "", export.NewError(export.KindValidation, fmt.Sprintf("shader %q already exists", name), nil)
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeStages(dir); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return "", fmt.Errorf("%w (cleanup failed: %v)", err, rmErr)
		}
		return "", err
	}
	return dir, nil
}

func writeStages(dir string) error {
	if err := writeFile(filepath.Join(dir, VertexFile), []byte(VertexTemplate), 0o644); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, FragmentFile), []byte(FragmentTemplate), 0o644)
}
