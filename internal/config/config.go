package config

type Config struct {
	Defaults Defaults `yaml:"defaults"`
	Mirrors  []Mirror `yaml:"mirrors"`
	Schedule string   `yaml:"schedule"`
	Rsync    Rsync    `yaml:"rsync"`
}

type Defaults struct {
	RemoteUser string `yaml:"remote_user"`
	RemoteHost string `yaml:"remote_host"`
}

type Mirror struct {
	Label      string `yaml:"label"`
	RemoteUser string `yaml:"remote_user"`
	RemoteHost string `yaml:"remote_host"`
	RemotePath string `yaml:"remote_path"`
	LocalPath  string `yaml:"local_path"`
}

type Rsync struct {
	Path      string   `yaml:"path"`
	ExtraArgs []string `yaml:"extra_args"`
}
