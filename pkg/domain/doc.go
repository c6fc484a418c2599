/*
Package domain contains the shared vocabulary of the story module.

It defines the lifecycle events emitted by stories, the hook set used to
observe them, and the sentinel errors returned by the integration layers
(hosts, scenes, HTTP). The package has no dependencies beyond the standard
library so every other package can import it.

# Key Entities

  - StoryEvent: a snapshot of a story at a lifecycle transition.
  - LifecycleHooks: callbacks fired on create, draw, redraw, destroy and release.
  - Errors: ErrHostDestroyed, ErrHostNotFound, ErrStoryNotFound, ErrUnknownAction, ErrInvalidScene.
*/
package domain
