package opc

// PartConstructor is a function that creates a Part from serialized data.
type PartConstructor func(partName PackURI, contentType, relType string, blob []byte, pkg *OpcPackage) (Part, error)

// PartFactory maps content types to Part constructors.
type PartFactory struct {
	constructors map[string]PartConstructor
	selector     func(contentType, relType string) PartConstructor
}

// NewPartFactory creates an empty PartFactory.
func NewPartFactory() *PartFactory {
	return &PartFactory{
		constructors: make(map[string]PartConstructor),
	}
}

// Register maps a content type to a constructor.
func (f *PartFactory) Register(contentType string, ctor PartConstructor) {
	f.constructors[contentType] = ctor
}

// SetSelector sets a custom selector function that takes precedence over content type map.
func (f *PartFactory) SetSelector(sel func(contentType, relType string) PartConstructor) {
	f.selector = sel
}

// New creates a Part using the registered constructors.
// Falls back to BasePart if no constructor matches.
func (f *PartFactory) New(partName PackURI, contentType, relType string, blob []byte, pkg *OpcPackage) (Part, error) {
	if f.selector != nil {
		if ctor := f.selector(contentType, relType); ctor != nil {
			return ctor(partName, contentType, relType, blob, pkg)
		}
	}
	if ctor, ok := f.constructors[contentType]; ok {
		return ctor(partName, contentType, relType, blob, pkg)
	}
	return NewBasePart(partName, contentType, blob, pkg), nil
}
