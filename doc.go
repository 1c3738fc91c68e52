/*
Package dispatcher moves activity hand-overs from a SharePoint workbook into the orchestrator work queue.

opgaveflyt-dispatcher is intended to be run on a schedule. Each run downloads the hand-over workbook from the
team site document library, creates one queue element per row for the NovaOpgaveFlyt process and then replaces
the workbook with an empty template so that the same hand-overs are not queued twice.

opgaveflyt-dispatcher supports the following commands:

  - dispatch, to queue the pending hand-overs and reset the workbook
  - get, to download a file from the document store
  - put, to upload a file to the document store
  - reset, to write (and optionally upload) an empty hand-over workbook
  - set-constant, to store a named constant in the orchestrator database
  - set-credential, to store a named credential in the orchestrator database
  - authorise, to authorise access to Google Drive for the 'gdrive' document store
  - version, to display the current version
*/
package dispatcher
