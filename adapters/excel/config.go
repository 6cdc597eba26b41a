package excel

// SourceConfig holds the file locations of the two source tables
type SourceConfig struct {
	MuPath  string `json:"mu_path"`
	PhiPath string `json:"phi_path"`
}

// DefaultSourceConfig returns the file names produced by the preparation step
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		MuPath:  "modified_mu_jg.csv",
		PhiPath: "modified_phi_ig.csv",
	}
}
