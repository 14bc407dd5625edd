package artifact

// Origin holds the original input of one workflow run. Actions that rename or
// overwrite the original file replace the held artifact so later steps see the
// current on-disk identity. An Origin belongs to exactly one run.
type Origin struct {
	current Artifact
}

func NewOrigin(a Artifact) *Origin {
	return &Origin{current: a}
}

func (o *Origin) Get() Artifact {
	return o.current
}

func (o *Origin) Set(a Artifact) {
	o.current = a
}
