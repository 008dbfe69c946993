package config

// descriptorFile represents one build.yaml on disk. The root file carries a
// project block; included files carry a module block. Project-wide fields in
// an included file are ignored.
type descriptorFile struct {
	Project *projectBlock `yaml:"project"`
	Module  *moduleBlock  `yaml:"module"`
	Targets []targetDTO   `yaml:"targets"`
}

type projectBlock struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	CxxStandard *int     `yaml:"cxx_standard"`
	Includes    []string `yaml:"includes"`
}

type moduleBlock struct {
	Name     string   `yaml:"name"`
	Includes []string `yaml:"includes"`
}

// targetDTO represents one target declaration in a descriptor.
type targetDTO struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	Compiler      string   `yaml:"compiler"`
	Sources       []string `yaml:"sources"`
	IncludeDirs   []string `yaml:"include_dirs"`
	LibDirs       []string `yaml:"lib_dirs"`
	Libs          []string `yaml:"libs"`
	Flags         []string `yaml:"flags"`
	CompilerFlags []string `yaml:"compiler_flags"`
	LinkerFlags   []string `yaml:"linker_flags"`
	CxxStandard   *int     `yaml:"cxx_standard"`
	OutputDir     string   `yaml:"output_dir"`
	Deps          []string `yaml:"deps"`
}

// includes returns the include list of a descriptor regardless of which
// block carries it.
func (d *descriptorFile) includes() []string {
	if d.Module != nil {
		return d.Module.Includes
	}
	if d.Project != nil {
		return d.Project.Includes
	}
	return nil
}
