package dataset

import _ "embed"

//go:embed default.yaml
var defaultDataset []byte
